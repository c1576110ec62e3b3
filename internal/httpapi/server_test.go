package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReloader struct {
	err error
}

func (f fakeReloader) Reload(context.Context) error { return f.err }

func TestReload_Success(t *testing.T) {
	srv := New(fakeReloader{}, "1.2.3", ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/config/reload", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestReload_Failure_Returns500WithExactBody(t *testing.T) {
	srv := New(fakeReloader{err: errors.New("boom")}, "1.2.3", ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/config/reload", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	result := w.Result()
	defer result.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Equal(t, "Failed to reload job configuration", w.Body.String())
}

func TestVersion_ReturnsConfiguredVersion(t *testing.T) {
	srv := New(fakeReloader{}, "9.9.9", ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "9.9.9", body["version"])
}

func TestHealth_ReturnsOK(t *testing.T) {
	srv := New(fakeReloader{}, "1.0.0", ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}
