package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/arturoeanton/soundgate/internal/port"
)

// Page size used when a listing carries no limit query, and the hard cap.
const (
	DefaultLimit = 25
	MaxLimit     = 5000
)

// columnFunc maps a query attribute to a SQL expression. arg binds a value
// and returns its placeholder.
type columnFunc func(attribute string, arg func(any) string) (string, error)

// filter is the WHERE/ORDER/LIMIT tail built from backend queries.
type filter struct {
	args  []any
	where []string
	order string
	limit int
	off   int
}

func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return "$" + strconv.Itoa(len(f.args))
}

// buildFilter translates queries into SQL. args already bound by the caller
// (scope columns) keep their positions.
func buildFilter(args []any, queries []port.Query, col columnFunc, defaultOrder string) (*filter, error) {
	f := &filter{args: args, order: defaultOrder, limit: DefaultLimit}
	for _, q := range queries {
		switch q.Method {
		case port.QueryEqual:
			expr, err := col(q.Attribute, f.arg)
			if err != nil {
				return nil, err
			}
			vals := make([]string, 0, len(q.Values))
			for _, v := range q.Values {
				vals = append(vals, fmt.Sprint(v))
			}
			f.where = append(f.where, fmt.Sprintf("%s = ANY(%s)", expr, f.arg(pq.Array(vals))))
		case port.QuerySearch:
			expr, err := col(q.Attribute, f.arg)
			if err != nil {
				return nil, err
			}
			term := fmt.Sprint(q.Values[0])
			f.where = append(f.where, fmt.Sprintf("%s ILIKE %s", expr, f.arg("%"+escapeLike(term)+"%")))
		case port.QueryLimit:
			n, err := q.Int()
			if err != nil {
				return nil, err
			}
			if n < 0 || n > MaxLimit {
				return nil, fmt.Errorf("limit %d out of range", n)
			}
			f.limit = n
		case port.QueryOffset:
			n, err := q.Int()
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("offset %d out of range", n)
			}
			f.off = n
		case port.QueryOrderDesc:
			expr, err := col(q.Attribute, f.arg)
			if err != nil {
				return nil, err
			}
			f.order = expr + " DESC"
		default:
			return nil, fmt.Errorf("unsupported query method %q", q.Method)
		}
	}
	return f, nil
}

// tail renders the clauses that follow the scope conditions.
func (f *filter) tail() string {
	var b strings.Builder
	for _, w := range f.where {
		b.WriteString(" AND ")
		b.WriteString(w)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(f.order)
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", f.limit, f.off)
	return b.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// documentColumn resolves document attributes. System fields map to columns,
// everything else reads the jsonb data as text.
func documentColumn(attribute string, arg func(any) string) (string, error) {
	switch attribute {
	case "$id":
		return "id", nil
	case "$createdAt":
		return "created_at", nil
	case "$updatedAt":
		return "updated_at", nil
	case "":
		return "", fmt.Errorf("query needs an attribute")
	}
	if strings.HasPrefix(attribute, "$") {
		return "", fmt.Errorf("unknown system attribute %q", attribute)
	}
	return "data->>(" + arg(attribute) + "::text)", nil
}

// fileColumn resolves the attributes a file listing can filter on.
func fileColumn(attribute string, _ func(any) string) (string, error) {
	switch attribute {
	case "$id":
		return "id", nil
	case "name":
		return "name", nil
	case "mimeType":
		return "mime_type", nil
	case "sizeOriginal":
		return "size", nil
	case "$createdAt":
		return "created_at", nil
	default:
		return "", fmt.Errorf("unknown file attribute %q", attribute)
	}
}
