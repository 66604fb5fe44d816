package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/appointments-api/internal/config"
	"github.com/aanand-mishra/appointments-api/internal/storage/jsonfile"
)

const indexHTML = "<html><body>book here</body></html>"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(staticDir, "img"), 0o755))

	store, err := jsonfile.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "appointments.txt")})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(store, staticDir, logger))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, target string, body io.Reader, contentType string) (int, string, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data), resp.Header
}

func TestStaticFiles(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name       string
		path       string
		expectCode int
		expectBody string
	}{
		{name: "booking page", path: "/", expectCode: http.StatusOK, expectBody: indexHTML},
		{name: "asset", path: "/style.css", expectCode: http.StatusOK, expectBody: "body{}"},
		{name: "missing asset", path: "/nope.js", expectCode: http.StatusNotFound, expectBody: msgNotFound},
		{name: "directory", path: "/img", expectCode: http.StatusNotFound, expectBody: msgNotFound},
		{name: "traversal", path: "/../go.mod", expectCode: http.StatusNotFound, expectBody: msgNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body, _ := do(t, http.MethodGet, srv.URL+tc.path, nil, "")
			assert.Equal(t, tc.expectCode, code)
			assert.Equal(t, tc.expectBody, body)
		})
	}
}

func TestFallback(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/submit-booking"},
		{method: http.MethodPut, path: "/modify-appointment"},
		{method: http.MethodDelete, path: "/cancel-appointment"},
		{method: http.MethodPost, path: "/"},
		{method: http.MethodPost, path: "/unknown"},
		{method: http.MethodPost, path: "/api/appointments"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			code, body, header := do(t, tc.method, srv.URL+tc.path, nil, "")
			assert.Equal(t, http.StatusNotFound, code)
			assert.Equal(t, msgNotFound, body)
			assert.True(t, strings.HasPrefix(header.Get("Content-Type"), "text/plain"))
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)

	code, body, header := do(t, http.MethodGet, srv.URL+"/healthz", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
	assert.NotEmpty(t, header.Get("Content-Type"))
}

func TestBookingLifecycle(t *testing.T) {
	srv := newServer(t)
	form := "application/x-www-form-urlencoded"

	booking := url.Values{
		"name": {"A"}, "email": {"a@x.com"}, "phone": {"111"},
		"service": {"Cut"}, "time": {"10:00"}, "date": {"2024-01-01"},
	}

	code, body, _ := do(t, http.MethodPost, srv.URL+"/submit-booking", strings.NewReader(booking.Encode()), form)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Appointment for A booked successfully.", body)

	booking.Set("service", "Color")
	code, body, _ = do(t, http.MethodPost, srv.URL+"/submit-booking", strings.NewReader(booking.Encode()), form)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Appointment for A updated successfully.", body)

	modify := url.Values{"phone": {"111"}, "notes": {"bring photos"}}
	code, body, _ = do(t, http.MethodPost, srv.URL+"/modify-appointment", strings.NewReader(modify.Encode()), form)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Appointment for phone number 111 updated successfully.", body)

	code, body, _ = do(t, http.MethodGet, srv.URL+"/api/appointments/111", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"service":"Color"`)
	assert.Contains(t, body, `"notes":"bring photos"`)

	cancel := url.Values{"phone": {"111"}}
	code, body, _ = do(t, http.MethodPost, srv.URL+"/cancel-appointment", strings.NewReader(cancel.Encode()), form)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<h1>Success</h1><p>Successfully cancelled appointment for A, Phone: 111.</p>", body)

	code, body, _ = do(t, http.MethodGet, srv.URL+"/api/appointments", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", strings.TrimSpace(body))

	code, _, _ = do(t, http.MethodPost, srv.URL+"/cancel-appointment", bytes.NewReader([]byte(cancel.Encode())), form)
	assert.Equal(t, http.StatusNotFound, code)
}
