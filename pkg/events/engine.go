package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jwebster45206/canadian-trail/pkg/state"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

var (
	ErrUnknownEvent  = errors.New("unknown event")
	ErrUnknownStage  = errors.New("unknown stage")
	ErrUnknownChoice = errors.New("unknown choice")
)

// Run is the part of a game the engine reads and mutates.
type Run interface {
	HasRun() bool
	Active() bool
	Day() int
	Location() string
	Visited(nodeID string) bool
	EnsureWorld(ctx context.Context) (*world.Graph, error)

	NextFloat(ctx context.Context) (float64, error)
	NextRange(ctx context.Context, min, max float64) (float64, error)

	AppendLog(ctx context.Context, entry string) error
	AdjustResources(ctx context.Context, changes map[string]int) (map[string]int, error)
	ShiftDays(ctx context.Context, days int) error
	RevealNeighbors(ctx context.Context, nodeID string, opts state.RevealOptions) ([]string, error)
	TeleportTo(ctx context.Context, nodeID string, opts state.TeleportOptions) error

	EncounterCooldown(eventID string) (state.Cooldown, bool)
	RecordEncounterTrigger(ctx context.Context, eventID string) error
	HasEncounterFlag(flag string) bool
	SetEncounterFlag(ctx context.Context, flag string, value bool) error
	ClearEncounterFlag(ctx context.Context, flag string) error
	AddEncounterBuff(ctx context.Context, b state.Buff) error
	RemoveEncounterBuff(ctx context.Context, id string) (bool, error)
	RemoveEncounterBuffsByKind(ctx context.Context, kind state.BuffKind) (bool, error)
}

var _ Run = (*state.Game)(nil)

// Loader supplies the event library.
type Loader interface {
	LoadEvents(ctx context.Context) (*Library, error)
}

// Engine holds a normalized event library. It is safe for concurrent use;
// the runs passed to it are not.
type Engine struct {
	mu     sync.RWMutex
	order  []*Event
	index  map[string]*Event
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		index:  map[string]*Event{},
		logger: logger,
	}
}

// Initialize loads the library from loader, replacing any loaded events.
func (e *Engine) Initialize(ctx context.Context, loader Loader) error {
	lib, err := loader.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	e.Load(lib)
	return nil
}

// Load normalizes lib and makes it the active library. Events without an id
// or without stages are skipped. A repeated id replaces the earlier event in
// its original position.
func (e *Engine) Load(lib *Library) {
	order := []*Event{}
	index := map[string]*Event{}
	if lib != nil {
		for i := range lib.Events {
			ev := normalize(lib.Events[i])
			if ev.ID == "" {
				e.logger.Warn("Skipping event without id", "index", i)
				continue
			}
			if len(ev.Stages) == 0 {
				e.logger.Warn("Skipping event without stages", "event_id", ev.ID)
				continue
			}
			if prev, ok := index[ev.ID]; ok {
				*prev = *ev
				continue
			}
			index[ev.ID] = ev
			order = append(order, ev)
		}
	}
	e.mu.Lock()
	e.order, e.index = order, index
	e.mu.Unlock()
	e.logger.Debug("Loaded event library", "events", len(order))
}

func normalize(src Event) *Event {
	ev := src
	if ev.Hook == "" {
		ev.Hook = HookArrival
	}
	if ev.Rarity == "" {
		ev.Rarity = "common"
	}
	ev.Stages = make([]Stage, len(src.Stages))
	ev.stages = make(map[string]*Stage, len(src.Stages))
	for i, s := range src.Stages {
		st := s.Clone()
		if st.ID == "" {
			st.ID = fmt.Sprintf("stage-%d", i)
		}
		for j := range st.Choices {
			if st.Choices[j].ID == "" {
				st.Choices[j].ID = fmt.Sprintf("%s-choice-%d", st.ID, j)
			}
		}
		ev.Stages[i] = *st
	}
	for i := range ev.Stages {
		ev.stages[ev.Stages[i].ID] = &ev.Stages[i]
	}
	return &ev
}

// Events returns the ids of the loaded events in library order.
func (e *Engine) Events() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, len(e.order))
	for i, ev := range e.order {
		ids[i] = ev.ID
	}
	return ids
}

func (e *Engine) lookup(id string) (*Event, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ev, ok := e.index[id]
	return ev, ok
}

// MaybeTrigger picks an event for hook. It returns nil when no event is
// eligible or the run is not active. Picking draws one value from the run
// stream, records the cooldown and logs the event summary.
func (e *Engine) MaybeTrigger(ctx context.Context, hook string, run Run, tc TriggerContext) (*Trigger, error) {
	if !run.Active() {
		return nil, nil
	}
	e.mu.RLock()
	candidates := make([]*Event, 0, len(e.order))
	for _, ev := range e.order {
		if ev.Hook == hook {
			candidates = append(candidates, ev)
		}
	}
	e.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, nil
	}

	var region string
	if needsRegion(candidates) {
		r, err := resolveRegion(ctx, run, tc)
		if err != nil {
			return nil, err
		}
		region = r
	}
	eligible := candidates[:0]
	for _, ev := range candidates {
		if passes(ev, run, tc, region) {
			eligible = append(eligible, ev)
		}
	}
	picked, err := pickWeighted(ctx, run, eligible)
	if err != nil || picked == nil {
		return nil, err
	}

	stage, ok := picked.stage("")
	if !ok {
		return nil, fmt.Errorf("%w: entry stage %q of event %q", ErrUnknownStage, picked.EntryStage, picked.ID)
	}
	if err := run.RecordEncounterTrigger(ctx, picked.ID); err != nil {
		return nil, err
	}
	summary := picked.Summary
	if summary == "" {
		title := picked.Title
		if title == "" {
			title = picked.ID
		}
		summary = fmt.Sprintf("Encountered: %s.", title)
	}
	if err := run.AppendLog(ctx, summary); err != nil {
		return nil, err
	}
	e.logger.Debug("Triggered event", "event_id", picked.ID, "hook", hook, "region", region)
	return &Trigger{
		ID:      picked.ID,
		Title:   picked.Title,
		Hook:    picked.Hook,
		StageID: stage.ID,
		Stage:   stage.Clone(),
		Context: tc.clone(),
	}, nil
}

// ResolveChoice applies a choice of a stage. An empty stageID means the
// event's entry stage. Unknown ids return ErrUnknownEvent, ErrUnknownStage
// or ErrUnknownChoice, and a finished run returns state.ErrGameOver.
func (e *Engine) ResolveChoice(ctx context.Context, eventID, stageID, choiceID string, run Run, tc TriggerContext) (*Resolution, error) {
	ev, ok := e.lookup(eventID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}
	stage, ok := ev.stage(stageID)
	if !ok {
		return nil, fmt.Errorf("%w: %q for event %q", ErrUnknownStage, stageID, eventID)
	}
	choice, ok := stage.choice(choiceID)
	if !ok {
		return nil, fmt.Errorf("%w: %q for stage %q", ErrUnknownChoice, choiceID, stage.ID)
	}
	if !run.HasRun() {
		return nil, state.ErrNoRun
	}
	if !run.Active() {
		return nil, state.ErrGameOver
	}

	a := &applier{run: run, event: ev, stage: stage, choice: choice, tc: tc, logger: e.logger}
	var outcome []string
	if choice.Outcome != "" {
		outcome = append(outcome, choice.Outcome)
	}
	if choice.Log != "" {
		if err := run.AppendLog(ctx, choice.Log); err != nil {
			return nil, err
		}
	}
	msgs, err := a.applyAll(ctx, choice.Effects)
	if err != nil {
		return nil, err
	}
	outcome = append(outcome, msgs...)

	var roll *RollRecord
	if choice.Roll != nil {
		v, err := run.NextFloat(ctx)
		if err != nil {
			return nil, err
		}
		roll = &RollRecord{Value: v, Success: v <= choice.Roll.chance()}
		branch := choice.Roll.Failure
		if roll.Success {
			branch = choice.Roll.Success
		}
		if branch != nil {
			if branch.Outcome != "" {
				outcome = append(outcome, branch.Outcome)
			}
			msgs, err := a.applyAll(ctx, branch.Effects)
			if err != nil {
				return nil, err
			}
			outcome = append(outcome, msgs...)
		}
	}

	for _, f := range choice.SetFlags {
		if err := run.SetEncounterFlag(ctx, f.Flag, f.Value); err != nil {
			return nil, err
		}
	}
	for _, f := range choice.ClearFlags {
		if err := run.ClearEncounterFlag(ctx, f); err != nil {
			return nil, err
		}
	}

	res := &Resolution{
		Outcome: strings.TrimSpace(strings.Join(outcome, " ")),
		Done:    true,
		Roll:    roll,
	}
	if choice.NextStage != "" {
		if next, ok := ev.stages[choice.NextStage]; ok {
			res.NextStageID = next.ID
			res.NextStage = next.Clone()
			res.Done = false
		} else {
			e.logger.Warn("Choice points at missing stage",
				"event_id", ev.ID,
				"choice_id", choice.ID,
				"next_stage", choice.NextStage)
		}
	}
	return res, nil
}
