package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/canadian-trail/internal/content"
	"github.com/jwebster45206/canadian-trail/pkg/events"
	"github.com/jwebster45206/canadian-trail/pkg/state"
	"github.com/jwebster45206/canadian-trail/pkg/storage"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

// maxStagesPerEvent bounds how many stages one event may chain through.
const maxStagesPerEvent = 8

type simOptions struct {
	DataDir string
	Seed    int64
	Vehicle string
	Steps   int
	Width   int
}

// simulate plays a run headlessly: take the first available action at each
// stop, drive toward the final checkpoint and always pick the first choice
// of any event. The same options always print the same log.
func simulate(ctx context.Context, opts simOptions, out io.Writer, logger *slog.Logger) error {
	loader := content.NewLoader(opts.DataDir, logger)
	engine := events.NewEngine(logger)
	if err := engine.Initialize(ctx, loader); err != nil {
		return err
	}

	g := state.NewGame(storage.NewMemoryStore(), loader, logger).WithLegacyGraph(loader)
	seed := opts.Seed
	if _, err := g.StartNewRun(ctx, state.RunOptions{Seed: &seed, VehicleID: opts.Vehicle}); err != nil {
		return err
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return err
	}
	if len(graph.Checkpoints) == 0 {
		return fmt.Errorf("world has no checkpoints")
	}
	goal, ok := graph.Node(graph.Checkpoints[len(graph.Checkpoints)-1])
	if !ok {
		return fmt.Errorf("final checkpoint missing from world")
	}

	for step := 0; step < opts.Steps && g.Active(); step++ {
		if err := takeFirstAction(ctx, g); err != nil {
			return err
		}
		next := pickNext(g, graph, goal)
		if next == "" {
			if err := g.MarkGameOver(ctx, "Stranded with nowhere left to drive."); err != nil {
				return err
			}
			break
		}
		res, err := g.TravelTo(ctx, next)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("travel from %s to %s refused", g.Location(), next)
		}
		if err := playEvents(ctx, engine, g, res); err != nil {
			return err
		}

		switch {
		case g.Location() == goal.ID:
			err = g.MarkGameOver(ctx, fmt.Sprintf("Made it to %s!", goal.Name))
		case g.Snapshot().Resources.Gas <= 0:
			err = g.MarkGameOver(ctx, "Out of gas. The trip ends here.")
		case g.Snapshot().Resources.Ride <= 0:
			err = g.MarkGameOver(ctx, "The ride gave out. The trip ends here.")
		}
		if err != nil {
			return err
		}
	}

	s := g.Snapshot()
	fmt.Fprintf(out, "Seed %d, %s, day %d (%s)\n", s.Seed, s.Vehicle.Name, s.Day, state.TimeLabel(s.TimeSegment))
	fmt.Fprintf(out, "Gas %d  Snacks %d  Ride %d  Money %d\n\n",
		s.Resources.Gas, s.Resources.Snacks, s.Resources.Ride, s.Resources.Money)
	for _, entry := range s.Log {
		fmt.Fprintln(out, wordwrap.String(entry, opts.Width))
	}
	return nil
}

func takeFirstAction(ctx context.Context, g *state.Game) error {
	opts, err := g.ActionOptions(ctx, g.Location())
	if err != nil {
		return err
	}
	for _, o := range opts {
		if !o.Available {
			continue
		}
		_, err := g.PerformNodeAction(ctx, o.ID)
		return err
	}
	return nil
}

// pickNext prefers unvisited neighbors, then the one nearest the goal.
func pickNext(g *state.Game, graph *world.Graph, goal *world.Node) string {
	best, bestDist, bestVisited := "", math.Inf(1), true
	for _, c := range graph.Neighbors(g.Location()) {
		n, ok := graph.Node(c.ID)
		if !ok {
			continue
		}
		visited := g.Visited(c.ID)
		d := math.Hypot(n.Coords.X-goal.Coords.X, n.Coords.Y-goal.Coords.Y)
		if (bestVisited && !visited) || (visited == bestVisited && d < bestDist) {
			best, bestDist, bestVisited = c.ID, d, visited
		}
	}
	return best
}

func playEvents(ctx context.Context, engine *events.Engine, g *state.Game, res *state.TravelResult) error {
	tc := events.TriggerContext{FromNodeID: res.From, ToNodeID: res.To, NodeID: res.To}
	trigger, err := engine.MaybeTrigger(ctx, events.HookTravel, g, tc)
	if err == nil && trigger == nil {
		trigger, err = engine.MaybeTrigger(ctx, events.HookArrival, g, tc)
	}
	if err != nil || trigger == nil {
		return err
	}
	stage := trigger.Stage
	for i := 0; i < maxStagesPerEvent && stage != nil && len(stage.Choices) > 0; i++ {
		r, err := engine.ResolveChoice(ctx, trigger.ID, stage.ID, stage.Choices[0].ID, g, tc)
		if err != nil {
			return err
		}
		if r.Outcome != "" {
			if err := g.AppendLog(ctx, r.Outcome); err != nil {
				return err
			}
		}
		if r.Done {
			break
		}
		stage = r.NextStage
	}
	return nil
}

// describeWorld prints every node of the world generated for seed in
// creation order.
func describeWorld(ctx context.Context, dataDir string, seed int64, width int, out io.Writer, logger *slog.Logger) error {
	sk, err := content.NewLoader(dataDir, logger).LoadSkeleton(ctx)
	if err != nil {
		return err
	}
	g, err := world.Generate(sk, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "World v%d, seed %d: %d nodes, %d roads\n\n", g.Version, g.Seed, len(g.Order), len(g.Edges))
	for _, id := range g.Order {
		n, _ := g.Node(id)
		exits := make([]string, 0, len(n.Connections))
		for _, c := range n.Connections {
			exits = append(exits, fmt.Sprintf("%s (%.1f, hazard %.2f)", c.ID, c.Distance, c.Hazard))
		}
		line := fmt.Sprintf("%s [%s] %s, %s. Actions: %s. Roads: %s.",
			n.ID, n.Kind.Label(), n.Name, n.Region,
			strings.Join(n.Actions, ", "), strings.Join(exits, "; "))
		fmt.Fprintln(out, wordwrap.String(line, width))
	}
	return nil
}
