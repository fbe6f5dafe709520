package events

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/canadian-trail/pkg/state"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

// applier carries what effect resolution needs to know about the choice
// being resolved.
type applier struct {
	run    Run
	event  *Event
	stage  *Stage
	choice *Choice
	tc     TriggerContext
	logger *slog.Logger
}

// applyAll applies effects in order and returns their outcome messages.
func (a *applier) applyAll(ctx context.Context, effects EffectList) ([]string, error) {
	var msgs []string
	for _, eff := range effects {
		msg, err := a.apply(ctx, eff)
		if err != nil {
			return msgs, err
		}
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (a *applier) apply(ctx context.Context, eff Effect) (string, error) {
	switch e := eff.(type) {
	case ResourcesEffect:
		if _, err := a.run.AdjustResources(ctx, e.Deltas()); err != nil {
			return "", err
		}
		return e.Message, nil

	case LogEffect:
		return "", a.run.AppendLog(ctx, e.Message)

	case DayShiftEffect:
		if d := e.Delta(); d != 0 {
			if err := a.run.ShiftDays(ctx, d); err != nil {
				return "", err
			}
		}
		return e.Message, nil

	case RevealEffect:
		target := a.resolveTarget(e.Target)
		if target == "" {
			return "", nil
		}
		opts := state.RevealOptions{HazardHints: e.HazardHints}
		if e.Type == EffectRevealHazards {
			opts = state.RevealOptions{HazardHints: true}
		} else {
			opts.MaxHazard = e.MaxHazard
		}
		revealed, err := a.run.RevealNeighbors(ctx, target, opts)
		if err != nil {
			return "", err
		}
		return strings.Replace(e.Message, "{count}", strconv.Itoa(len(revealed)), 1), nil

	case FlagEffect:
		if e.Flag != "" {
			var err error
			if e.Type == EffectClearFlag {
				err = a.run.ClearEncounterFlag(ctx, e.Flag)
			} else {
				value := true
				if e.Value != nil {
					value = *e.Value
				}
				err = a.run.SetEncounterFlag(ctx, e.Flag, value)
			}
			if err != nil {
				return "", err
			}
		}
		return e.Message, nil

	case AddBuffEffect:
		if err := a.run.AddEncounterBuff(ctx, a.buff(e)); err != nil {
			return "", err
		}
		return e.Message, nil

	case ClearBuffEffect:
		if e.ID != "" {
			if _, err := a.run.RemoveEncounterBuff(ctx, e.ID); err != nil {
				return "", err
			}
		}
		if e.Kind != "" {
			if _, err := a.run.RemoveEncounterBuffsByKind(ctx, state.BuffKind(e.Kind)); err != nil {
				return "", err
			}
		}
		return e.Message, nil

	case TeleportEffect:
		target, err := a.teleportTarget(ctx, e)
		if err != nil || target == "" {
			return "", err
		}
		err = a.run.TeleportTo(ctx, target, state.TeleportOptions{
			DayShift:        e.DayShift,
			Log:             e.Log,
			RevealNeighbors: e.RevealNeighbors,
			HazardHints:     e.HazardHints,
		})
		if err != nil {
			return "", err
		}
		return e.Message, nil

	default:
		a.logger.Debug("Ignoring effect", "event_id", a.event.ID, "type", eff.EffectType())
		return "", nil
	}
}

// buff builds the buff an addBuff effect grants. Without an explicit id the
// buff is keyed by event, stage, choice and kind so resolving the same
// choice again refreshes it.
func (a *applier) buff(e AddBuffEffect) state.Buff {
	kind := e.Kind
	id := e.ID
	if id == "" {
		id = fmt.Sprintf("%s-%s-%s-%s", a.event.ID, a.stage.ID, a.choice.ID, cmp.Or(kind, "buff"))
	}
	b := state.Buff{
		ID:    id,
		Kind:  state.BuffKind(cmp.Or(kind, string(state.BuffGeneric))),
		Tick:  e.Tick,
		Label: e.Label,
		Meta:  e.Meta,
	}
	switch {
	case e.Amount != nil:
		b.Amount = *e.Amount
	case e.Value != nil:
		b.Amount = *e.Value
	}
	switch {
	case e.Remaining != nil:
		b.Remaining = *e.Remaining
	case e.Duration != nil:
		b.Remaining = *e.Duration
	}
	return b
}

// resolveTarget turns an effect target into a node id. Empty means the
// current location.
func (a *applier) resolveTarget(target string) string {
	location := a.run.Location()
	if id, ok := strings.CutPrefix(target, "node:"); ok {
		return id
	}
	switch target {
	case "", "current", "here":
		return location
	case "origin", "from":
		return cmp.Or(a.tc.FromNodeID, a.tc.OriginID)
	case "destination", "arrival", "to":
		return cmp.Or(a.tc.ToNodeID, a.tc.NodeID, location)
	default:
		return target
	}
}

// teleportTarget resolves where a teleport lands. Targets that are not in
// the world are ignored.
func (a *applier) teleportTarget(ctx context.Context, e TeleportEffect) (string, error) {
	graph, err := a.run.EnsureWorld(ctx)
	if err != nil {
		return "", err
	}
	var target string
	switch {
	case e.TargetID != "":
		target = e.TargetID
	case e.Mode == "forward":
		target = a.forwardNeighbor(graph, a.resolveTarget(e.Origin))
	case e.Mode == "random" || e.Target == "":
		target, err = a.randomNeighbor(ctx, graph, a.resolveTarget(e.Origin))
		if err != nil {
			return "", err
		}
	default:
		target = a.resolveTarget(e.Target)
	}
	if _, ok := graph.Node(target); !ok {
		if target != "" {
			a.logger.Warn("Teleport target not in world", "event_id", a.event.ID, "target", target)
		}
		return "", nil
	}
	return target, nil
}

func (a *applier) neighbors(graph *world.Graph, origin string) []world.Connection {
	var out []world.Connection
	for _, c := range graph.Neighbors(origin) {
		if _, ok := graph.Node(c.ID); ok {
			out = append(out, c)
		}
	}
	return out
}

// forwardNeighbor picks the farthest neighbor not yet visited, or the
// farthest neighbor when all have been visited.
func (a *applier) forwardNeighbor(graph *world.Graph, origin string) string {
	conns := a.neighbors(graph, origin)
	if len(conns) == 0 {
		return ""
	}
	slices.SortStableFunc(conns, func(x, y world.Connection) int {
		return cmp.Compare(y.Distance, x.Distance)
	})
	for _, c := range conns {
		if !a.run.Visited(c.ID) {
			return c.ID
		}
	}
	return conns[0].ID
}

func (a *applier) randomNeighbor(ctx context.Context, graph *world.Graph, origin string) (string, error) {
	conns := a.neighbors(graph, origin)
	if len(conns) == 0 {
		return "", nil
	}
	v, err := a.run.NextRange(ctx, 0, float64(len(conns)))
	if err != nil {
		return "", err
	}
	i := min(int(math.Floor(v)), len(conns)-1)
	return conns[i].ID, nil
}
