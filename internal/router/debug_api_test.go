package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/internal/container"
)

func TestDebugHealth_NoBackendsConfigured(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/debug/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"data":{}`)
}

func TestDebugHealth_ReportsFailingSearch(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}, DisableRetry: true})
	require.NoError(t, err)
	container.SetES(es)
	t.Cleanup(func() { container.SetES(nil) })

	w := s.do(http.MethodGet, "/api/debug/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, errorsOf(t, w), "elasticsearch")
}
