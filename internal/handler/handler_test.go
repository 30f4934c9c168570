package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/port"
)

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderProject, "proj")
	return req
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	tb := newTestBackend()
	resp, err := tb.app.Test(httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAccount(t *testing.T) {
	tb := newTestBackend()

	body := map[string]string{"userId": "u1", "email": "a@b.com", "password": "secret123", "name": "A"}
	resp, err := tb.app.Test(jsonRequest(http.MethodPost, "/v1/account", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var user domain.User
	decode(t, resp, &user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "a@b.com", user.Email)

	resp, err = tb.app.Test(jsonRequest(http.MethodPost, "/v1/account", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateSessionSetsCookieAndSecret(t *testing.T) {
	tb := newTestBackend()

	resp, err := tb.app.Test(jsonRequest(http.MethodPost, "/v1/account/sessions/email",
		map[string]string{"email": "a@b.com", "password": "secret123"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == domain.SessionCookieName("proj") {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var session domain.Session
	decode(t, resp, &session)
	assert.Equal(t, "tok", session.Secret)
	assert.True(t, session.Current)
}

func TestCreateSessionInvalidCredentials(t *testing.T) {
	tb := newTestBackend()

	resp, err := tb.app.Test(jsonRequest(http.MethodPost, "/v1/account/sessions/email",
		map[string]string{"email": "a@b.com", "password": "nope"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Type string `json:"type"`
		Code int    `json:"code"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "user_invalid_credentials", body.Type)
	assert.Equal(t, 401, body.Code)
}

func TestAccountRequiresSession(t *testing.T) {
	tb := newTestBackend()

	resp, err := tb.app.Test(jsonRequest(http.MethodGet, "/v1/account", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := jsonRequest(http.MethodGet, "/v1/account", nil)
	req.Header.Set(middleware.HeaderSession, "wrong")
	resp, err = tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountWithHeaderOrCookie(t *testing.T) {
	tb := newTestBackend()

	byHeader := jsonRequest(http.MethodGet, "/v1/account", nil)
	byHeader.Header.Set(middleware.HeaderSession, "tok")

	byCookie := jsonRequest(http.MethodGet, "/v1/account", nil)
	byCookie.AddCookie(&http.Cookie{Name: domain.SessionCookieName("proj"), Value: "tok"})

	for _, req := range []*http.Request{byHeader, byCookie} {
		resp, err := tb.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var user domain.User
		decode(t, resp, &user)
		assert.Equal(t, "u1", user.ID)
	}
}

func TestGetSession(t *testing.T) {
	tb := newTestBackend()

	for _, id := range []string{"current", "s1"} {
		req := jsonRequest(http.MethodGet, "/v1/account/sessions/"+id, nil)
		req.Header.Set(middleware.HeaderSession, "tok")
		resp, err := tb.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var s domain.Session
		decode(t, resp, &s)
		assert.Equal(t, "s1", s.ID)
		assert.Empty(t, s.Secret)
		assert.True(t, s.Current)
	}

	req := jsonRequest(http.MethodGet, "/v1/account/sessions/other", nil)
	req.Header.Set(middleware.HeaderSession, "tok")
	resp, err := tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSessions(t *testing.T) {
	tb := newTestBackend()

	req := jsonRequest(http.MethodDelete, "/v1/account/sessions", nil)
	req.Header.Set(middleware.HeaderSession, "tok")
	resp, err := tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"u1"}, tb.identity.loggedOut)
}

func TestDeleteOwnSession(t *testing.T) {
	tb := newTestBackend()

	req := jsonRequest(http.MethodDelete, "/v1/account/sessions/other", nil)
	req.Header.Set(middleware.HeaderSession, "tok")
	resp, err := tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, tb.identity.loggedOut)

	req = jsonRequest(http.MethodDelete, "/v1/account/sessions/s1", nil)
	req.Header.Set(middleware.HeaderSession, "tok")
	resp, err = tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"u1/s1"}, tb.identity.loggedOut)

	resp, err = tb.app.Test(jsonRequest(http.MethodDelete, "/v1/account/sessions/current", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDocuments(t *testing.T) {
	tb := newTestBackend()

	create := jsonRequest(http.MethodPost, "/v1/databases/db/collections/tickets/documents",
		map[string]any{"documentId": "unique()", "data": map[string]any{"type": "VIP"}})
	resp, err := tb.app.Test(create)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "guests cannot write")

	create = jsonRequest(http.MethodPost, "/v1/databases/db/collections/tickets/documents",
		map[string]any{"documentId": "unique()", "data": map[string]any{"type": "VIP"}})
	create.Header.Set(middleware.HeaderSession, "tok")
	resp, err = tb.app.Test(create)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc domain.Document
	decode(t, resp, &doc)
	assert.NotEqual(t, "unique()", doc.ID)
	assert.Equal(t, "VIP", doc.String("type"))

	v := url.Values{}
	v.Add("queries[]", port.Equal("type", "VIP").String())
	v.Add("queries[]", port.Limit(5).String())
	resp, err = tb.app.Test(jsonRequest(http.MethodGet, "/v1/databases/db/collections/tickets/documents?"+v.Encode(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list domain.DocumentList
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Total)
	require.Len(t, tb.docs.lastQs, 2)
	assert.Equal(t, port.QueryEqual, tb.docs.lastQs[0].Method)
	assert.Equal(t, port.QueryLimit, tb.docs.lastQs[1].Method)

	patch := jsonRequest(http.MethodPatch, "/v1/databases/db/collections/tickets/documents/"+doc.ID,
		map[string]any{"data": map[string]any{"type": "GA"}})
	patch.Header.Set(middleware.HeaderSession, "tok")
	resp, err = tb.app.Test(patch)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &doc)
	assert.Equal(t, "GA", doc.String("type"))

	assert.Eventually(t, func() bool {
		return tb.audit.has("u1 " + domain.AuditActionDocWrite + " db/tickets " + doc.ID)
	}, time.Second, 10*time.Millisecond)
}

func TestDocumentsRejectsBadQuery(t *testing.T) {
	tb := newTestBackend()
	target := "/v1/databases/db/collections/c/documents?" + url.Values{"queries[]": {`{"method":"between"}`}}.Encode()
	resp, err := tb.app.Test(jsonRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartUpload(t *testing.T, target, fileID, name, mimeType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("fileId", fileID))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.HeaderSession, "tok")
	return req
}

func TestStorageUploadViewDelete(t *testing.T) {
	tb := newTestBackend()

	resp, err := tb.app.Test(multipartUpload(t, "/v1/storage/buckets/tracks/files", "f1", "song.mp3", "audio/mpeg", []byte("ID3 data")))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var file domain.File
	decode(t, resp, &file)
	assert.Equal(t, "f1", file.ID)
	assert.Equal(t, "audio/mpeg", file.MimeType)
	assert.EqualValues(t, 8, file.SizeOriginal)
	assert.Eventually(t, func() bool {
		return tb.audit.has("u1 " + domain.AuditActionUpload + " tracks f1")
	}, time.Second, 10*time.Millisecond)

	resp, err = tb.app.Test(httptest.NewRequest(http.MethodGet, "/v1/storage/buckets/tracks/files/f1/view?project=proj", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "audio/mpeg"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ID3 data", string(body))

	v := url.Values{"queries[]": {port.Limit(10).String(), port.Offset(0).String()}}
	resp, err = tb.app.Test(httptest.NewRequest(http.MethodGet, "/v1/storage/buckets/tracks/files?"+v.Encode(), nil))
	require.NoError(t, err)
	var list domain.FileList
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Total)
	assert.Len(t, tb.files.lastQs, 2)

	del := httptest.NewRequest(http.MethodDelete, "/v1/storage/buckets/tracks/files/f1", nil)
	del.Header.Set(middleware.HeaderSession, "tok")
	resp, err = tb.app.Test(del)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = tb.app.Test(httptest.NewRequest(http.MethodGet, "/v1/storage/buckets/tracks/files/f1/view", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStorageUploadWithoutFile(t *testing.T) {
	tb := newTestBackend()
	req := httptest.NewRequest(http.MethodPost, "/v1/storage/buckets/tracks/files", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderSession, "tok")
	resp, err := tb.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
