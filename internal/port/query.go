package port

import (
	"encoding/json"
	"fmt"
)

// Query methods understood by the backend.
const (
	QueryEqual     = "equal"
	QuerySearch    = "search"
	QueryLimit     = "limit"
	QueryOffset    = "offset"
	QueryOrderDesc = "orderDesc"
)

// Query is one structured filter, search or paging predicate.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals any of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: QueryEqual, Attribute: attribute, Values: values}
}

// Search matches documents whose attribute contains term.
func Search(attribute, term string) Query {
	return Query{Method: QuerySearch, Attribute: attribute, Values: []any{term}}
}

// Limit caps the page size.
func Limit(n int) Query {
	return Query{Method: QueryLimit, Values: []any{n}}
}

// Offset skips the first n results.
func Offset(n int) Query {
	return Query{Method: QueryOffset, Values: []any{n}}
}

// OrderDesc sorts by attribute, newest/highest first.
func OrderDesc(attribute string) Query {
	return Query{Method: QueryOrderDesc, Attribute: attribute}
}

// String encodes the query the way it travels in `queries[]`.
func (q Query) String() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}

// ParseQuery decodes one `queries[]` value.
func ParseQuery(s string) (Query, error) {
	var q Query
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return Query{}, fmt.Errorf("parse query: %w", err)
	}
	switch q.Method {
	case QueryEqual, QuerySearch:
		if q.Attribute == "" || len(q.Values) == 0 {
			return Query{}, fmt.Errorf("parse query: %s needs an attribute and values", q.Method)
		}
	case QueryLimit, QueryOffset:
		if len(q.Values) != 1 {
			return Query{}, fmt.Errorf("parse query: %s needs one value", q.Method)
		}
		if _, err := q.Int(); err != nil {
			return Query{}, err
		}
	case QueryOrderDesc:
		if q.Attribute == "" {
			return Query{}, fmt.Errorf("parse query: orderDesc needs an attribute")
		}
	default:
		return Query{}, fmt.Errorf("parse query: unsupported method %q", q.Method)
	}
	return q, nil
}

// Int returns the first value as an int (limit/offset).
func (q Query) Int() (int, error) {
	if len(q.Values) == 0 {
		return 0, fmt.Errorf("query %s: no value", q.Method)
	}
	switch v := q.Values[0].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("query %s: value %v is not a number", q.Method, v)
	}
}
