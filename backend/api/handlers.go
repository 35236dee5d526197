package api

import (
	"encoding/json"
	"net/http"

	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/effector"
	"github.com/mirrorlab/rdmsim/internal/predictor"
	"github.com/mirrorlab/rdmsim/internal/probes"
	"github.com/mirrorlab/rdmsim/internal/topology"
)

// API bundles the running simulation's dependencies behind the HTTP
// surface described in spec.md §6: status, prediction, and action
// scheduling, none of which persist anything (spec.md's "Persisted
// state: none").
type API struct {
	Network      *core.Network
	Scheduler    *effector.Scheduler
	MirrorProbe  *probes.MirrorProbe
	LinkProbe    *probes.LinkProbe
	BuildVersion string
	BuildTime    string
}

// New constructs an API bound to a running simulation's components.
func New(n *core.Network, sched *effector.Scheduler, mp *probes.MirrorProbe, lp *probes.LinkProbe) *API {
	return &API{Network: n, Scheduler: sched, MirrorProbe: mp, LinkProbe: lp}
}

// SetBuildInfo records the version/build-time strings reported by Version.
func (a *API) SetBuildInfo(version, buildTime string) {
	a.BuildVersion = version
	a.BuildTime = buildTime
}

// Health is a dependency-free liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

// Version returns the build version and build time.
func (a *API) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"version":    a.BuildVersion,
		"build_time": a.BuildTime,
	})
}

// Status reports the current tick and the latest mirror/link probe
// snapshots.
// Endpoint: GET /api/status
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	tick := a.Network.CurrentTick()
	writeJSON(w, 200, map[string]any{
		"tick":   tick,
		"mirror": a.MirrorProbe.Report(tick),
		"link":   a.LinkProbe.Report(tick),
	})
}

// History returns every retained mirror/link probe sample, keyed by tick.
// Endpoint: GET /api/history
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"mirror": a.MirrorProbe.History(),
		"link":   a.LinkProbe.History(),
	})
}

type scheduleRequest struct {
	Kind                 string `json:"kind"`
	AtTick               int64  `json:"at_tick"`
	TargetMirrorCount    int    `json:"target_mirror_count,omitempty"`
	TargetLinksPerMirror int    `json:"target_links_per_mirror,omitempty"`
	Strategy             string `json:"strategy,omitempty"`
}

func (req scheduleRequest) toAction() (core.Action, error) {
	switch req.Kind {
	case "mirror_change":
		return core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: req.TargetMirrorCount}, nil
	case "target_link_change":
		return core.Action{Kind: core.ActionTargetLinkChange, TargetLinksPerMirror: req.TargetLinksPerMirror}, nil
	case "topology_change":
		strat, err := topology.New(req.Strategy)
		if err != nil {
			return core.Action{}, err
		}
		return core.Action{Kind: core.ActionTopologyChange, NewStrategy: strat}, nil
	default:
		return core.Action{}, errUnknownActionKind(req.Kind)
	}
}

type errUnknownActionKind string

func (e errUnknownActionKind) Error() string { return "unknown action kind: " + string(e) }

// ScheduleAction enqueues a control action to be applied at a future
// tick (spec.md §4.5) and returns its cancellation handle.
// Endpoint: POST /api/actions
func (a *API) ScheduleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only POST supported")
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}
	action, err := req.toAction()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.AtTick <= a.Network.CurrentTick() {
		writeError(w, http.StatusBadRequest, "bad_request", "at_tick must be in the future")
		return
	}
	handle := a.Scheduler.Schedule(action, req.AtTick)
	writeJSON(w, http.StatusAccepted, map[string]any{"handle": handle.String(), "at_tick": req.AtTick})
}

// Predict evaluates a hypothetical action against the network's
// current state without scheduling or applying it (spec.md §4.6).
// Endpoint: POST /api/predict
func (a *API) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only POST supported")
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}
	action, err := req.toAction()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	deltas, err := predictor.Predict(a.Network, action)
	if err != nil {
		if cfgErr, ok := err.(*core.ConfigError); ok {
			writeError(w, http.StatusUnprocessableEntity, "config_error", cfgErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "prediction_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, deltas)
}
