package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/canadian-trail/internal/logger"
	"github.com/jwebster45206/canadian-trail/internal/services/broadcast"
	"github.com/jwebster45206/canadian-trail/pkg/events"
	"github.com/jwebster45206/canadian-trail/pkg/state"
	"github.com/jwebster45206/canadian-trail/pkg/storage"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

// RunKey is the store key a run is saved under.
func RunKey(id uuid.UUID) string {
	return "run:" + id.String()
}

type CreateRunRequest struct {
	Seed      *int64 `json:"seed,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
}

type TravelRequest struct {
	To string `json:"to"`
}

type TriggerRequest struct {
	Hook    string                `json:"hook"`
	Context events.TriggerContext `json:"context"`
}

type ResolveRequest struct {
	EventID  string                `json:"eventId"`
	StageID  string                `json:"stageId,omitempty"`
	ChoiceID string                `json:"choiceId"`
	Context  events.TriggerContext `json:"context"`
}

type GameOverRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RunResponse struct {
	ID    string       `json:"id"`
	State *state.State `json:"state"`
}

type TravelResponse struct {
	Result *state.TravelResult `json:"result"`
	Event  *events.Trigger     `json:"event,omitempty"`
	State  *state.State        `json:"state"`
}

type ActionResponse struct {
	Result state.ActionResult `json:"result"`
	State  *state.State       `json:"state"`
}

type TriggerResponse struct {
	Event *events.Trigger `json:"event"`
	State *state.State    `json:"state"`
}

type ResolveResponse struct {
	Resolution *events.Resolution `json:"resolution"`
	State      *state.State       `json:"state"`
}

// RunHandler serves the /v1/runs API. Every request restores its run from
// the store and holds that run's lock until the response is written.
type RunHandler struct {
	store     storage.Store
	skeletons state.SkeletonLoader
	legacy    state.LegacyGraphLoader
	engine    *events.Engine
	worlds    *world.Cache
	publisher broadcast.Publisher
	logger    *slog.Logger

	locks sync.Map
}

func NewRunHandler(store storage.Store, skeletons state.SkeletonLoader, engine *events.Engine, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		store:     store,
		skeletons: skeletons,
		engine:    engine,
		worlds:    world.NewCache(),
		publisher: broadcast.Nop{},
		logger:    logger,
	}
}

// WithLegacyGraph sets the loader for saves made on the static graph
// Returns the RunHandler for method chaining
func (h *RunHandler) WithLegacyGraph(loader state.LegacyGraphLoader) *RunHandler {
	h.legacy = loader
	return h
}

// WithPublisher sets where run activity is broadcast
// Returns the RunHandler for method chaining
func (h *RunHandler) WithPublisher(p broadcast.Publisher) *RunHandler {
	h.publisher = p
	return h
}

// ServeHTTP handles HTTP requests for runs
// Routes:
// POST   /v1/runs                          - Start a new run
// GET    /v1/runs/{id}                     - Read a run
// DELETE /v1/runs/{id}                     - Delete a run
// GET    /v1/runs/{id}/world               - World graph of the run
// GET    /v1/runs/{id}/estimate?to=        - Travel estimate to a neighbor
// GET    /v1/runs/{id}/actions             - Actions at the current location
// POST   /v1/runs/{id}/actions/{actionId}  - Take an action
// POST   /v1/runs/{id}/travel              - Travel to a neighbor
// POST   /v1/runs/{id}/events/trigger      - Ask for an event on a hook
// POST   /v1/runs/{id}/events/resolve      - Resolve an event choice
// POST   /v1/runs/{id}/gameover            - End the run
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/runs"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid run ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid run ID format")
		return
	}
	rest := parts[1:]

	route := r.Method + " " + strings.Join(rest, "/")
	switch {
	case route == "GET ":
		h.handleGet(w, r, id)
	case route == "DELETE ":
		h.handleDelete(w, r, id)
	case route == "GET world":
		h.handleWorld(w, r, id)
	case route == "GET estimate":
		h.handleEstimate(w, r, id)
	case route == "GET actions":
		h.handleActions(w, r, id)
	case r.Method == http.MethodPost && len(rest) == 2 && rest[0] == "actions":
		h.handlePerform(w, r, id, rest[1])
	case route == "POST travel":
		h.handleTravel(w, r, id)
	case route == "POST events/trigger":
		h.handleTrigger(w, r, id)
	case route == "POST events/resolve":
		h.handleResolve(w, r, id)
	case route == "POST gameover":
		h.handleGameOver(w, r, id)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *RunHandler) lock(id uuid.UUID) func() {
	v, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (h *RunHandler) newGame(id uuid.UUID) *state.Game {
	g := state.NewGame(h.store, h.skeletons, logger.WithRunID(h.logger, id.String())).
		WithStorageKey(RunKey(id)).
		WithWorldCache(h.worlds)
	if h.legacy != nil {
		g.WithLegacyGraph(h.legacy)
	}
	return g
}

// loadGame restores the saved run, returning state.ErrNoRun when there is
// none.
func (h *RunHandler) loadGame(ctx context.Context, id uuid.UUID) (*state.Game, error) {
	g := h.newGame(id)
	if err := g.Initialize(ctx); err != nil {
		return nil, err
	}
	if !g.HasRun() {
		return nil, state.ErrNoRun
	}
	return g, nil
}

func (h *RunHandler) publish(ctx context.Context, id uuid.UUID, g *state.Game, t broadcast.EventType, data map[string]any) {
	err := h.publisher.Publish(ctx, broadcast.Event{
		Type:  t,
		RunID: id.String(),
		Day:   g.Day(),
		Data:  data,
	})
	if err != nil {
		h.logger.Warn("Failed to broadcast run activity", "run_id", id.String(), "event_type", t, "error", err)
	}
}

// fail maps an operation error to a status code.
func (h *RunHandler) fail(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, state.ErrNoRun):
		writeError(w, h.logger, http.StatusNotFound, "Run not found")
	case errors.Is(err, state.ErrGameOver):
		writeError(w, h.logger, http.StatusConflict, state.ReasonGameOver)
	case errors.Is(err, events.ErrUnknownEvent),
		errors.Is(err, events.ErrUnknownStage),
		errors.Is(err, events.ErrUnknownChoice):
		writeError(w, h.logger, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Run operation failed", "run_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *RunHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

func (h *RunHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := uuid.New()
	defer h.lock(id)()

	g := h.newGame(id)
	s, err := g.StartNewRun(r.Context(), state.RunOptions{Seed: req.Seed, VehicleID: req.VehicleID})
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.logger.Info("Run created", "run_id", id.String(), "seed", s.Seed, "vehicle", s.Vehicle.ID)
	h.publish(r.Context(), id, g, broadcast.EventTypeRunStarted, map[string]any{
		"seed":     s.Seed,
		"vehicle":  s.Vehicle.ID,
		"location": s.Location,
	})
	writeJSON(w, h.logger, http.StatusCreated, RunResponse{ID: id.String(), State: s})
}

func (h *RunHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, RunResponse{ID: id.String(), State: g.Snapshot()})
}

func (h *RunHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	unlock := h.lock(id)
	defer unlock()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if err := g.ClearSave(r.Context()); err != nil {
		h.fail(w, id, err)
		return
	}
	h.logger.Info("Run deleted", "run_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *RunHandler) handleWorld(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	graph, err := g.EnsureWorld(r.Context())
	if err != nil {
		h.fail(w, id, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, graph)
}

func (h *RunHandler) handleEstimate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	to := r.URL.Query().Get("to")
	if to == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Query parameter 'to' is required")
		return
	}
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	est, err := g.TravelEstimate(r.Context(), g.Location(), to)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if est == nil {
		writeError(w, h.logger, http.StatusNotFound, fmt.Sprintf("No road from %s to %s", g.Location(), to))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, est)
}

func (h *RunHandler) handleActions(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	opts, err := g.ActionOptions(r.Context(), g.Location())
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if opts == nil {
		opts = []state.ActionOption{}
	}
	writeJSON(w, h.logger, http.StatusOK, opts)
}

func (h *RunHandler) handlePerform(w http.ResponseWriter, r *http.Request, id uuid.UUID, actionID string) {
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	res, err := g.PerformNodeAction(r.Context(), actionID)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	status := http.StatusOK
	if !res.OK {
		status = http.StatusConflict
	} else {
		h.publish(r.Context(), id, g, broadcast.EventTypeRunAction, map[string]any{
			"action":  actionID,
			"message": res.Message,
		})
	}
	writeJSON(w, h.logger, status, ActionResponse{Result: res, State: g.Snapshot()})
}

func (h *RunHandler) handleTravel(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req TravelRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Field 'to' is required")
		return
	}
	defer h.lock(id)()
	ctx := r.Context()
	g, err := h.loadGame(ctx, id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if !g.Active() {
		writeError(w, h.logger, http.StatusConflict, state.ReasonGameOver)
		return
	}
	res, err := g.TravelTo(ctx, req.To)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if res == nil {
		writeError(w, h.logger, http.StatusConflict, fmt.Sprintf("Cannot travel from %s to %s", g.Location(), req.To))
		return
	}
	h.publish(ctx, id, g, broadcast.EventTypeRunTraveled, map[string]any{
		"from":        res.From,
		"to":          res.To,
		"gas":         res.GasCost,
		"snacks":      res.SnackCost,
		"ride_damage": res.RideDamage,
	})

	tc := events.TriggerContext{FromNodeID: res.From, ToNodeID: res.To, NodeID: res.To}
	trigger, err := h.engine.MaybeTrigger(ctx, events.HookTravel, g, tc)
	if err == nil && trigger == nil {
		trigger, err = h.engine.MaybeTrigger(ctx, events.HookArrival, g, tc)
	}
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if trigger != nil {
		h.publish(ctx, id, g, broadcast.EventTypeEventTriggered, map[string]any{
			"event_id": trigger.ID,
			"hook":     trigger.Hook,
		})
	}
	writeJSON(w, h.logger, http.StatusOK, TravelResponse{Result: res, Event: trigger, State: g.Snapshot()})
}

func (h *RunHandler) handleTrigger(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req TriggerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Hook == "" {
		req.Hook = events.HookArrival
	}
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	trigger, err := h.engine.MaybeTrigger(r.Context(), req.Hook, g, req.Context)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if trigger != nil {
		h.publish(r.Context(), id, g, broadcast.EventTypeEventTriggered, map[string]any{
			"event_id": trigger.ID,
			"hook":     trigger.Hook,
		})
	}
	writeJSON(w, h.logger, http.StatusOK, TriggerResponse{Event: trigger, State: g.Snapshot()})
}

func (h *RunHandler) handleResolve(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.EventID == "" || req.ChoiceID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Fields 'eventId' and 'choiceId' are required")
		return
	}
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	res, err := h.engine.ResolveChoice(r.Context(), req.EventID, req.StageID, req.ChoiceID, g, req.Context)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.publish(r.Context(), id, g, broadcast.EventTypeEventResolved, map[string]any{
		"event_id":  req.EventID,
		"choice_id": req.ChoiceID,
		"done":      res.Done,
	})
	writeJSON(w, h.logger, http.StatusOK, ResolveResponse{Resolution: res, State: g.Snapshot()})
}

func (h *RunHandler) handleGameOver(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req GameOverRequest
	if !h.decode(w, r, &req) {
		return
	}
	defer h.lock(id)()
	g, err := h.loadGame(r.Context(), id)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	if err := g.MarkGameOver(r.Context(), req.Reason); err != nil {
		h.fail(w, id, err)
		return
	}
	h.publish(r.Context(), id, g, broadcast.EventTypeRunEnded, map[string]any{"reason": req.Reason})
	writeJSON(w, h.logger, http.StatusOK, RunResponse{ID: id.String(), State: g.Snapshot()})
}
