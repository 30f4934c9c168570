package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// Headers understood by the backend.
const (
	HeaderProject = "X-Appwrite-Project"
	HeaderSession = "X-Appwrite-Session"
	HeaderOrigin  = "Origin"
)

// SessionCookie is the cookie the backend sets for browser sessions.
func SessionCookie(projectID string) string {
	return domain.SessionCookieName(projectID)
}

// restClient is the JSON-over-HTTP transport shared by all capability groups.
type restClient struct {
	endpoint   string // e.g. https://cloud.appwrite.io/v1
	projectID  string
	origin     string // native hosts only
	httpClient *http.Client
	creds      credentials
}

// remoteError is the backend's error body.
type remoteError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (c *restClient) url(path string, query url.Values) string {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// call sends a JSON request and decodes the JSON response into out (if non-nil).
func (c *restClient) call(ctx context.Context, op, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return port.Wrap(port.KindInvalidArgument, op, "encode request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return port.Wrap(port.KindInvalidArgument, op, "create request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

// send applies project and credential headers, executes req and maps errors.
func (c *restClient) send(op string, req *http.Request, out any) error {
	req.Header.Set(HeaderProject, c.projectID)
	req.Header.Set("Accept", "application/json")
	if c.origin != "" {
		req.Header.Set(HeaderOrigin, c.origin)
	}
	c.creds.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return port.Wrap(port.KindRemote, op, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return port.Wrap(port.KindRemote, op, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatus(op, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return port.Wrap(port.KindRemote, op, "decode response", err)
	}
	return nil
}

func mapStatus(op string, status int, body []byte) error {
	var re remoteError
	_ = json.Unmarshal(body, &re)
	msg := re.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var cause error
	switch status {
	case http.StatusUnauthorized:
		cause = port.ErrUnauthorized
	case http.StatusNotFound:
		cause = port.ErrNotFound
	case http.StatusConflict:
		cause = port.ErrConflict
	default:
		cause = fmt.Errorf("backend returned %d", status)
	}
	return &port.Error{Kind: port.KindRemote, Op: op, Message: msg, Cause: cause}
}
