package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olufemi424/agentic-ui/internal/config"
	"github.com/olufemi424/agentic-ui/internal/modules/investments"
	"github.com/olufemi424/agentic-ui/internal/modules/items"
	"github.com/olufemi424/agentic-ui/internal/reliability"
	"github.com/olufemi424/agentic-ui/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()
	cfg := &config.Config{
		DataDir:        dir,
		Port:           0,
		DevMode:        true,
		AllowedOrigins: []string{"*"},
	}

	itemsStore := storage.NewFileStore(filepath.Join(dir, "items.json"), items.Seed, log)
	accountsStore := storage.NewFileStore(filepath.Join(dir, "investments.json"), investments.Seed, log)
	itemsHandler := items.NewHandler(items.NewRepository(itemsStore, log), log)
	accountsHandler := investments.NewHandler(investments.NewRepository(accountsStore, log), log)

	backup := reliability.NewBackupService(dir, []string{filepath.Join(dir, "items.json")}, 2, nil, log)

	return New(Config{
		Log:            log,
		Config:         cfg,
		Modules:        []RouteRegistrar{itemsHandler, accountsHandler},
		SystemHandlers: NewSystemHandlers(backup, log),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestModuleRoutesAreMounted(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/items", "/api/investments", "/api/investments/insights"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSystemStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Greater(t, status.Goroutines, 0)
}

func TestManualBackupEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Touch the items store so there is a file to snapshot.
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/api/system/backup", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "items.json")

	req = httptest.NewRequest(http.MethodGet, "/api/system/backups", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backups")
}

func TestUnknownAPIRouteReturns404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
