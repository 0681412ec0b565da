package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/factory"
	"github.com/kilianp07/powerplan/core/journal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.CacheSize = 4
	cfg.Server.JournalToken = "secret"
	cfg.Log.Level = "error"
	cfg.Journal.Backend = journal.BackendJSONL
	cfg.Journal.Path = filepath.Join(t.TempDir(), "plans.jsonl")
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_Routes(t *testing.T) {
	svc := newService(t)
	h := svc.Handler()

	body, err := os.ReadFile(filepath.Join("..", "api", "productionplan", "testdata", "payload3.json"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, RouteProductionPlan, strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "0", rr.Header().Get("unsatisfied-load"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	planID := rr.Header().Get("X-Plan-ID")
	assert.NotEmpty(t, planID)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, RouteHealth, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, RouteLogs, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	logs := httptest.NewRequest(http.MethodGet, RouteLogs+"?plant=tj1", nil)
	logs.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, logs)
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []journal.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, planID, recs[0].ID)
	assert.Equal(t, "910", recs[0].Load.String())
}

func TestService_RunStopsOnCancel(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_InvalidSections(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Backend = "stdlog"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err = New(cfg)
	assert.Error(t, err)
}
