package state

import (
	"context"
	"fmt"
	"math"

	"github.com/jwebster45206/canadian-trail/pkg/actions"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

const (
	ReasonNoRun       = "No active run."
	ReasonGameOver    = "The journey is over."
	ReasonNoWorld     = "World not ready."
	ReasonUnavailable = "Action unavailable here."
	ReasonElsewhere   = "Travel there first."
	ReasonCompleted   = "Already completed."
)

// ActionResult is the outcome of PerformNodeAction. When OK is false only
// Reason is set and the run is unchanged.
type ActionResult struct {
	OK       bool           `json:"ok"`
	Reason   string         `json:"reason,omitempty"`
	ActionID string         `json:"actionId,omitempty"`
	Message  string         `json:"message,omitempty"`
	Deltas   actions.Deltas `json:"deltas"`
	Applied  actions.Deltas `json:"applied"`
	TimeCost int            `json:"timeCost"`
}

type ActionDefinition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ActionOption describes one action a node offers and whether it can be
// taken right now.
type ActionOption struct {
	ID         string           `json:"id"`
	Definition ActionDefinition `json:"definition"`
	Preview    *actions.Preview `json:"preview"`
	Available  bool             `json:"available"`
	Reason     string           `json:"reason,omitempty"`
}

func insufficient(resource string) string {
	return fmt.Sprintf("Not enough %s.", resource)
}

func (g *Game) usage(nodeID, actionID string) int {
	return g.state.ActionHistory[nodeID][actionID]
}

// blockReason returns why actionID cannot be taken at node right now, or ""
// when it can.
func (g *Game) blockReason(node *world.Node, actionID string) string {
	if node.ID != g.state.Location {
		return ReasonElsewhere
	}
	if !node.HasAction(actionID) {
		return ReasonUnavailable
	}
	preview := actions.ComputePreview(node, actionID)
	if preview == nil {
		return ReasonUnavailable
	}
	if g.usage(node.ID, actionID) >= 1 {
		return ReasonCompleted
	}
	for _, cost := range preview.Costs {
		if have, _ := g.state.Resources.Get(cost.Resource); have < cost.Amount {
			return insufficient(cost.Resource)
		}
	}
	return ""
}

func (g *Game) runReason(ctx context.Context) (*world.Graph, string) {
	if g.state == nil {
		return nil, ReasonNoRun
	}
	if g.state.GameOver() {
		return nil, ReasonGameOver
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		g.logger.Warn("World not ready", "key", g.key, "error", err)
		return nil, ReasonNoWorld
	}
	return graph, ""
}

// PerformNodeAction takes an action at the current location. Expected
// refusals come back as a result with OK false; only store failures are
// returned as errors.
func (g *Game) PerformNodeAction(ctx context.Context, actionID string) (ActionResult, error) {
	graph, reason := g.runReason(ctx)
	if reason != "" {
		return ActionResult{Reason: reason}, nil
	}
	node, ok := graph.Node(g.state.Location)
	if !ok {
		return ActionResult{Reason: ReasonNoWorld}, nil
	}
	if reason := g.blockReason(node, actionID); reason != "" {
		return ActionResult{Reason: reason}, nil
	}

	usage := g.usage(node.ID, actionID)
	out := actions.RollOutcome(actionID, node, uint32(g.state.Seed), usage)
	if out == nil {
		return ActionResult{Reason: ReasonUnavailable}, nil
	}

	g.advanceTime(out.TimeCost)
	applied := g.state.Resources.apply(out.Deltas, g.maxResources())
	if g.state.ActionHistory[node.ID] == nil {
		g.state.ActionHistory[node.ID] = map[string]int{}
	}
	g.state.ActionHistory[node.ID][actionID] = usage + 1
	g.appendLog(fmt.Sprintf("%s: %s", node.Name, out.Message))

	if err := g.persist(ctx); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		OK:       true,
		ActionID: actionID,
		Message:  out.Message,
		Deltas:   out.Deltas,
		Applied:  applied,
		TimeCost: out.TimeCost,
	}, nil
}

// ActionOptions lists the actions nodeID offers with their previews and
// availability. It does not change the run.
func (g *Game) ActionOptions(ctx context.Context, nodeID string) ([]ActionOption, error) {
	if g.state == nil {
		return nil, nil
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := graph.Node(nodeID)
	if !ok {
		return []ActionOption{}, nil
	}
	tighten := 0.0
	if g.hasBuff(BuffPreviewTight) {
		tighten = g.buffTotal(BuffPreviewTight)
		if tighten <= 0 {
			tighten = 0.5
		}
		tighten = math.Min(1, tighten)
	}

	options := make([]ActionOption, 0, len(node.Actions))
	for _, id := range node.Actions {
		opt := ActionOption{ID: id}
		a, known := actions.Get(id)
		if !known {
			opt.Definition = ActionDefinition{ID: id, Title: world.Title(id)}
			opt.Reason = ReasonUnavailable
			options = append(options, opt)
			continue
		}
		opt.Definition = ActionDefinition{ID: id, Title: a.Title(), Description: a.Description()}
		opt.Preview = actions.ComputePreview(node, id)
		if tighten > 0 {
			tightenPreview(opt.Preview, tighten)
		}
		switch {
		case g.state.GameOver():
			opt.Reason = ReasonGameOver
		default:
			opt.Reason = g.blockReason(node, id)
		}
		opt.Available = opt.Reason == ""
		options = append(options, opt)
	}
	return options, nil
}

// tightenPreview pulls each yield range toward its midpoint by factor.
func tightenPreview(p *actions.Preview, factor float64) {
	for i, y := range p.Yields {
		mid := float64(y.Min+y.Max) / 2
		lo := roundInt(float64(y.Min) + (mid-float64(y.Min))*factor)
		hi := roundInt(float64(y.Max) - (float64(y.Max)-mid)*factor)
		p.Yields[i].Min = lo
		p.Yields[i].Max = max(lo, hi)
	}
}
