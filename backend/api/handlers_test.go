package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/effector"
	"github.com/mirrorlab/rdmsim/internal/probes"
	"github.com/mirrorlab/rdmsim/internal/topology"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	cfg := core.Config{NumMirrors: 4, NumLinksPerMirror: 2, Seed: 7, FileSize: 10}
	n := core.NewNetwork(cfg, topology.NewFullyConnectedStrategy(), nil)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	mp := probes.NewMirrorProbe()
	lp := probes.NewLinkProbe()
	n.RegisterProbe(mp)
	n.RegisterProbe(lp)
	if err := n.Tick(1); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	sched := effector.NewScheduler(nil)
	return New(n, sched, mp, lp)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	Health(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStatus_ReportsCurrentTick(t *testing.T) {
	a := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	a.Status(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Tick int64 `json:"tick"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Tick != 1 {
		t.Fatalf("expected tick=1, got %d", body.Tick)
	}
}

func TestScheduleAction_RejectsPastTick(t *testing.T) {
	a := newTestAPI(t)
	body, _ := json.Marshal(scheduleRequest{Kind: "mirror_change", TargetMirrorCount: 8, AtTick: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.ScheduleAction(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-future tick, got %d", w.Code)
	}
}

func TestScheduleAction_AcceptsFutureTick(t *testing.T) {
	a := newTestAPI(t)
	body, _ := json.Marshal(scheduleRequest{Kind: "mirror_change", TargetMirrorCount: 8, AtTick: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.ScheduleAction(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPredict_MissingBandwidthConfigSurfacesAsConfigError(t *testing.T) {
	a := newTestAPI(t)
	body, _ := json.Marshal(scheduleRequest{Kind: "target_link_change", TargetLinksPerMirror: 3})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.Predict(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 config_error, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPredict_UnknownActionKindIsBadRequest(t *testing.T) {
	a := newTestAPI(t)
	body, _ := json.Marshal(scheduleRequest{Kind: "not_a_real_kind"})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.Predict(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
