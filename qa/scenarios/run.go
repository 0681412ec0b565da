package scenarios

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/app"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/journal"
)

// RunScenario starts the full service on a test server, posts the scenario
// payload and checks the response.
func RunScenario(t *testing.T, sc *Scenario) {
	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.PermissiveValidation = sc.Permissive
	cfg.Log.Level = "error"
	cfg.Journal.Backend = journal.BackendSQLite
	cfg.Journal.Path = filepath.Join(t.TempDir(), "plans.db")
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+app.RouteProductionPlan, "application/json", strings.NewReader(sc.Payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != sc.Expected.Status {
		t.Fatalf("scenario %s expected status %d, got %d", sc.Name, sc.Expected.Status, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return
	}
	if want := sc.Expected.UnsatisfiedLoad; want != "" {
		if got := resp.Header.Get("unsatisfied-load"); !decimalEqual(want, got) {
			t.Errorf("scenario %s expected unsatisfied load %s, got %s", sc.Name, want, got)
		}
	}
	var got []struct {
		Name string      `json:"name"`
		P    json.Number `json:"p"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sc.Expected.Productions) == 0 {
		return
	}
	if len(got) != len(sc.Expected.Productions) {
		t.Fatalf("scenario %s expected %d productions, got %d", sc.Name, len(sc.Expected.Productions), len(got))
	}
	for i, want := range sc.Expected.Productions {
		if got[i].Name != want.Name || !decimalEqual(want.P, got[i].P.String()) {
			t.Errorf("scenario %s position %d: expected %s=%s, got %s=%s", sc.Name, i, want.Name, want.P, got[i].Name, got[i].P)
		}
	}
}

func decimalEqual(a, b string) bool {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return false
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}
