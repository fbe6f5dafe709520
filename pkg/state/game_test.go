package state

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
	"github.com/jwebster45206/canadian-trail/pkg/storage"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

type staticSkeleton struct {
	sk *world.Skeleton
}

func (s staticSkeleton) LoadSkeleton(ctx context.Context) (*world.Skeleton, error) {
	return s.sk, nil
}

type staticGraph struct {
	g *world.Graph
}

func (s staticGraph) LoadLegacyGraph(ctx context.Context) (*world.Graph, error) {
	return s.g, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSkeleton() *world.Skeleton {
	return &world.Skeleton{
		WorldVersion: 1,
		Checkpoints: []world.Checkpoint{
			{ID: "halifax", Name: "Halifax", Region: "Atlantic", Coords: &world.Coords{X: 92, Y: 60}},
			{ID: "quebec", Name: "Quebec City", Region: "Quebec", Coords: &world.Coords{X: 75, Y: 50}},
			{ID: "thunder-bay", Name: "Thunder Bay", Region: "Ontario", Coords: &world.Coords{X: 55, Y: 45}},
		},
	}
}

func seedPtr(v int64) *int64 { return &v }

func newTestGame(t *testing.T) (*Game, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewGame(store, staticSkeleton{testSkeleton()}, testLogger()), store
}

func startRun(t *testing.T, g *Game, seed int64, vehicle string) *State {
	t.Helper()
	s, err := g.StartNewRun(context.Background(), RunOptions{Seed: seedPtr(seed), VehicleID: vehicle})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func TestStartNewRun(t *testing.T) {
	g, store := newTestGame(t)
	s := startRun(t, g, 999, "minivan")

	assert.Equal(t, Resources{Gas: 8, Snacks: 6, Ride: 7, Money: 60}, s.Resources)
	assert.Equal(t, Resources{Gas: 8, Snacks: 6, Ride: 7, Money: 60}, *s.MaxResources)
	assert.Equal(t, 1, s.Day)
	assert.Equal(t, 0, s.TimeSegment)
	assert.Equal(t, "halifax", s.Location)
	assert.Equal(t, []string{"halifax"}, s.Visited)
	assert.Equal(t, int64(999), s.Seed)
	assert.Equal(t, WorldProcedural, s.World.Type)
	assert.Len(t, s.Party, 6)
	assert.False(t, s.GameOver())
	assert.True(t, s.Knowledge["halifax"].Seen)

	_, ok, _ := store.Get(context.Background(), DefaultStorageKey)
	assert.True(t, ok, "new run should be saved")
}

func TestVehicleSelection(t *testing.T) {
	tests := []struct {
		id    string
		stats Resources
	}{
		{"pickup", Resources{Gas: 7, Snacks: 5, Ride: 9, Money: 40}},
		{"schoolbus", Resources{Gas: 6, Snacks: 9, Ride: 8, Money: 80}},
		{"hovercraft", Resources{Gas: 8, Snacks: 6, Ride: 7, Money: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g, _ := newTestGame(t)
			s := startRun(t, g, 1, tt.id)
			assert.Equal(t, tt.stats, s.Resources)
		})
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	g, _ := newTestGame(t)
	startRun(t, g, 5, "")
	snap := g.Snapshot()
	snap.Resources.Gas = 0
	snap.Visited = append(snap.Visited, "nowhere")
	snap.Encounters.Flags["tampered"] = true

	fresh := g.Snapshot()
	assert.Equal(t, 8, fresh.Resources.Gas)
	assert.Equal(t, []string{"halifax"}, fresh.Visited)
	assert.False(t, fresh.Encounters.Flags["tampered"])
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGame(t)
	startRun(t, g, 2024, "pickup")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	next := graph.Neighbors("halifax")[0].ID
	_, err = g.TravelTo(ctx, next)
	require.NoError(t, err)
	before := g.Snapshot()

	restored := NewGame(store, staticSkeleton{testSkeleton()}, testLogger())
	require.NoError(t, restored.Initialize(ctx))
	after := restored.Snapshot()
	require.NotNil(t, after)
	assert.Equal(t, before, after)

	// Both games continue the same stream.
	a, err := g.NextFloat(ctx)
	require.NoError(t, err)
	b, err := restored.NextFloat(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInitializeWithoutSave(t *testing.T) {
	g, _ := newTestGame(t)
	require.NoError(t, g.Initialize(context.Background()))
	assert.Nil(t, g.Snapshot())
	assert.False(t, g.Active())
}

func TestInitializeCorruptSave(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGame(t)
	require.NoError(t, store.Set(ctx, DefaultStorageKey, "{not json"))
	require.NoError(t, g.Initialize(ctx))
	assert.Nil(t, g.Snapshot())
}

func TestShopTwiceAtSameNode(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 999, "minivan")

	first, err := g.PerformNodeAction(ctx, "shop")
	require.NoError(t, err)
	require.True(t, first.OK, "first shop should succeed: %s", first.Reason)
	assert.Less(t, first.Deltas.Money, 0)
	assert.NotEmpty(t, first.Message)

	snap := g.Snapshot()
	assert.Equal(t, 1, snap.ActionHistory["halifax"]["shop"])
	assert.Equal(t, 60+first.Deltas.Money, snap.Resources.Money)
	assert.LessOrEqual(t, snap.Resources.Gas, snap.MaxResources.Gas)
	assert.Equal(t, 1, snap.TimeSegment)

	second, err := g.PerformNodeAction(ctx, "shop")
	require.NoError(t, err)
	assert.False(t, second.OK)
	assert.Equal(t, "Already completed.", second.Reason)
	assert.Equal(t, snap, g.Snapshot(), "failed action must not change the run")
}

func TestPerformNodeActionRefusals(t *testing.T) {
	ctx := context.Background()

	t.Run("no run", func(t *testing.T) {
		g, _ := newTestGame(t)
		res, err := g.PerformNodeAction(ctx, "shop")
		require.NoError(t, err)
		assert.Equal(t, ReasonNoRun, res.Reason)
	})

	t.Run("unavailable", func(t *testing.T) {
		g, _ := newTestGame(t)
		startRun(t, g, 3, "")
		res, err := g.PerformNodeAction(ctx, "siphon")
		require.NoError(t, err)
		assert.Equal(t, ReasonUnavailable, res.Reason)
	})

	t.Run("insufficient money", func(t *testing.T) {
		g, _ := newTestGame(t)
		startRun(t, g, 3, "")
		_, err := g.AdjustResources(ctx, map[string]int{"money": -60})
		require.NoError(t, err)
		res, err := g.PerformNodeAction(ctx, "shop")
		require.NoError(t, err)
		assert.Equal(t, "Not enough money.", res.Reason)
	})

	t.Run("game over", func(t *testing.T) {
		g, _ := newTestGame(t)
		startRun(t, g, 3, "")
		require.NoError(t, g.MarkGameOver(ctx, "The van gave out."))
		res, err := g.PerformNodeAction(ctx, "shop")
		require.NoError(t, err)
		assert.Equal(t, ReasonGameOver, res.Reason)
	})
}

func TestActionOptions(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 999, "minivan")

	opts, err := g.ActionOptions(ctx, "halifax")
	require.NoError(t, err)
	require.Len(t, opts, 2)
	for _, o := range opts {
		assert.True(t, o.Available, "%s should be available: %s", o.ID, o.Reason)
		assert.NotNil(t, o.Preview)
	}

	res, err := g.PerformNodeAction(ctx, "shop")
	require.NoError(t, err)
	require.True(t, res.OK)

	opts, err = g.ActionOptions(ctx, "halifax")
	require.NoError(t, err)
	for _, o := range opts {
		if o.ID == "shop" {
			assert.False(t, o.Available)
			assert.Equal(t, ReasonCompleted, o.Reason)
		}
	}

	far, err := g.ActionOptions(ctx, "quebec")
	require.NoError(t, err)
	for _, o := range far {
		assert.Equal(t, ReasonElsewhere, o.Reason)
	}
}

func TestPreviewTightBuff(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 999, "minivan")
	loose, err := g.ActionOptions(ctx, "halifax")
	require.NoError(t, err)

	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "scout", Kind: BuffPreviewTight, Amount: 1}))
	tight, err := g.ActionOptions(ctx, "halifax")
	require.NoError(t, err)
	for i := range tight {
		for j, y := range tight[i].Preview.Yields {
			l := loose[i].Preview.Yields[j]
			assert.GreaterOrEqual(t, y.Min, l.Min)
			assert.LessOrEqual(t, y.Max, l.Max)
			assert.LessOrEqual(t, y.Max-y.Min, 1)
		}
	}
}

func TestTravelTo(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 77, "minivan")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)

	res, err := g.TravelTo(ctx, "halifax")
	require.NoError(t, err)
	assert.Nil(t, res, "travel to the current location is refused")

	res, err = g.TravelTo(ctx, "thunder-bay")
	require.NoError(t, err)
	assert.Nil(t, res, "travel to an unconnected node is refused")

	next := graph.Neighbors("halifax")[0].ID
	est, err := g.TravelEstimate(ctx, "halifax", next)
	require.NoError(t, err)
	require.NotNil(t, est)
	assert.GreaterOrEqual(t, est.GasCost, 1)
	assert.Equal(t, 1, est.SnackCost)

	res, err = g.TravelTo(ctx, next)
	require.NoError(t, err)
	require.NotNil(t, res)

	s := g.Snapshot()
	assert.Equal(t, next, s.Location)
	assert.Equal(t, []string{"halifax", next}, s.Visited)
	assert.Equal(t, 1, s.TimeSegment)
	assert.Equal(t, max(0, 8-est.GasCost), s.Resources.Gas)
	assert.Equal(t, 5, s.Resources.Snacks)
	assert.Equal(t, 7-res.RideDamage, s.Resources.Ride)
	assert.LessOrEqual(t, res.RideDamage, est.RideRange.Max)
	assert.True(t, s.Knowledge[next].Seen)

	back, err := g.TravelTo(ctx, "halifax")
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, []string{"halifax", next}, g.Snapshot().Visited, "revisits are not duplicated")
}

func TestTravelRefusedAfterGameOver(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 77, "")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	require.NoError(t, g.MarkGameOver(ctx, "Out of gas."))
	res, err := g.TravelTo(ctx, graph.Neighbors("halifax")[0].ID)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.True(t, g.Snapshot().GameOver())
}

func TestMutatorsRefusedAfterGameOver(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 77, "")
	_, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "escort", Kind: BuffSkipHazard}))
	require.NoError(t, g.MarkGameOver(ctx, "Out of gas."))
	before := g.Snapshot()

	tests := []struct {
		name string
		call func() error
	}{
		{"adjust resources", func() error {
			_, err := g.AdjustResources(ctx, map[string]int{"gas": -5})
			return err
		}},
		{"shift days", func() error { return g.ShiftDays(ctx, 3) }},
		{"teleport", func() error { return g.TeleportTo(ctx, "quebec", TeleportOptions{DayShift: 1}) }},
		{"reveal neighbors", func() error {
			_, err := g.RevealNeighbors(ctx, "halifax", RevealOptions{})
			return err
		}},
		{"add buff", func() error { return g.AddEncounterBuff(ctx, Buff{ID: "tailwind", Kind: BuffTravelGas}) }},
		{"remove buff", func() error {
			_, err := g.RemoveEncounterBuff(ctx, "escort")
			return err
		}},
		{"set flag", func() error { return g.SetEncounterFlag(ctx, "towed", true) }},
		{"clear flag", func() error { return g.ClearEncounterFlag(ctx, "towed") }},
		{"record trigger", func() error { return g.RecordEncounterTrigger(ctx, "moose") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrGameOver)
		})
	}
	assert.Equal(t, before, g.Snapshot())
}

func TestDayRollover(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 11, "schoolbus")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	next := graph.Neighbors("halifax")[0].ID
	for i := 0; i < 4; i++ {
		target := next
		if i%2 == 1 {
			target = "halifax"
		}
		res, err := g.TravelTo(ctx, target)
		require.NoError(t, err)
		require.NotNil(t, res)
	}
	s := g.Snapshot()
	assert.Equal(t, 2, s.Day)
	assert.Equal(t, 0, s.TimeSegment)
}

func TestRideDamageHighHazard(t *testing.T) {
	hits := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		r := rng.NewDerived(4242, "hazard-trial", i)
		d := rollRideDamage(0.9, r)
		if d < 0 || d > 3 {
			t.Fatalf("damage out of range: %d", d)
		}
		if d > 0 {
			hits++
		}
	}
	assert.Greater(t, hits, trials*8/10, "a 0.9 hazard should damage the ride most of the time")
}

func TestRideDamageLowHazard(t *testing.T) {
	r := rng.New(9)
	before := r.State()
	assert.Equal(t, 0, rollRideDamage(0.15, r))
	assert.Equal(t, before, r.State(), "low hazard consumes no draws")
}

func TestHazardTierMax(t *testing.T) {
	tests := []struct {
		hazard float64
		want   int
	}{
		{0.1, 0}, {0.15, 0}, {0.3, 1}, {0.5, 2}, {0.71, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hazardTierMax(tt.hazard), "hazard %v", tt.hazard)
	}
}

func TestTravelBuffs(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 808, "minivan")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	next := graph.Neighbors("halifax")[0].ID

	base, err := g.TravelEstimate(ctx, "halifax", next)
	require.NoError(t, err)

	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "tailwind", Kind: BuffTravelGas, Amount: 2, Remaining: 1}))
	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "escort", Kind: BuffSkipHazard}))
	est, err := g.TravelEstimate(ctx, "halifax", next)
	require.NoError(t, err)
	assert.Equal(t, base.GasCost+2, est.GasCost)
	assert.True(t, est.Protected)
	assert.Equal(t, world.Range{}, est.RideRange)

	res, err := g.TravelTo(ctx, next)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.RideDamage)
	assert.True(t, res.Protected)
	assert.Empty(t, g.EncounterBuffs(), "both buffs are used up by one trip")
}

func TestSkipHazardTravelTickChargedOncePerTrip(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 808, "minivan")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	next := graph.Neighbors("halifax")[0].ID

	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "shield", Kind: BuffSkipHazard, Remaining: 2, Tick: TickTravel}))

	res, err := g.TravelTo(ctx, next)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Protected)
	buffs := g.EncounterBuffs()
	require.Len(t, buffs, 1)
	assert.Equal(t, 1, buffs[0].Remaining)

	res, err = g.TravelTo(ctx, "halifax")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Protected)
	assert.Empty(t, g.EncounterBuffs())
}

func TestAddEncounterBuffReplacesByID(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 1, "")
	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "b", Kind: BuffHazard, Amount: 0.1}))
	require.NoError(t, g.AddEncounterBuff(ctx, Buff{ID: "b", Kind: BuffHazard, Amount: 0.3}))
	buffs := g.EncounterBuffs()
	require.Len(t, buffs, 1)
	assert.Equal(t, 0.3, buffs[0].Amount)
	assert.Equal(t, TickTravel, buffs[0].Tick)

	removed, err := g.RemoveEncounterBuffsByKind(ctx, BuffHazard)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, g.EncounterBuffs())
}

func TestAdjustResourcesClamps(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 1, "minivan")
	applied, err := g.AdjustResources(ctx, map[string]int{"gas": 5, "ride": -20, "karma": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"gas": 0, "ride": -7}, applied)
	s := g.Snapshot()
	assert.Equal(t, 8, s.Resources.Gas)
	assert.Equal(t, 0, s.Resources.Ride)
	assert.Equal(t, []string{"ride"}, g.ResourcesDepleted())
}

func TestShiftDays(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 1, "")
	require.NoError(t, g.ShiftDays(ctx, 2))
	assert.Equal(t, 3, g.Day())
	require.NoError(t, g.ShiftDays(ctx, -10))
	assert.Equal(t, 1, g.Day())
}

func TestLogLimit(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 1, "")
	for i := 0; i < 50; i++ {
		require.NoError(t, g.AppendLog(ctx, "tick"))
	}
	log := g.Snapshot().Log
	assert.Len(t, log, LogLimit)
	assert.Equal(t, "[Day 1] tick", log[len(log)-1])
}

func TestRevealNeighbors(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 31, "")
	graph, err := g.EnsureWorld(ctx)
	require.NoError(t, err)

	none := -1.0
	revealed, err := g.RevealNeighbors(ctx, "halifax", RevealOptions{MaxHazard: &none})
	require.NoError(t, err)
	assert.Empty(t, revealed)

	revealed, err = g.RevealNeighbors(ctx, "halifax", RevealOptions{HazardHints: true})
	require.NoError(t, err)
	assert.Len(t, revealed, len(graph.Neighbors("halifax")))
	s := g.Snapshot()
	for _, id := range revealed {
		assert.True(t, s.Knowledge[id].Seen)
		assert.Contains(t, s.Knowledge["halifax"].Exits, id)
	}
}

func TestTeleportTo(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 31, "")
	require.NoError(t, g.TeleportTo(ctx, "quebec", TeleportOptions{DayShift: 1, Log: "A tow truck hauls you ahead."}))
	s := g.Snapshot()
	assert.Equal(t, "quebec", s.Location)
	assert.Equal(t, 2, s.Day)
	assert.Contains(t, s.Visited, "quebec")
	assert.True(t, strings.HasSuffix(s.Log[len(s.Log)-1], "A tow truck hauls you ahead."))

	assert.Error(t, g.TeleportTo(ctx, "atlantis", TeleportOptions{}))
}

func TestEncounterFlagsAndCooldowns(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGame(t)
	startRun(t, g, 31, "")
	require.NoError(t, g.SetEncounterFlag(ctx, "met-moose", true))
	assert.True(t, g.HasEncounterFlag("met-moose"))
	require.NoError(t, g.SetEncounterFlag(ctx, "met-moose", false))
	assert.False(t, g.HasEncounterFlag("met-moose"))

	_, ok := g.EncounterCooldown("moose")
	assert.False(t, ok)
	require.NoError(t, g.RecordEncounterTrigger(ctx, "moose"))
	cd, ok := g.EncounterCooldown("moose")
	assert.True(t, ok)
	assert.Equal(t, 1, cd.Day)
}

func TestStoreFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGame(t)
	startRun(t, g, 31, "")
	boom := errors.New("disk full")
	store.SetWriteError(boom)
	err := g.AppendLog(ctx, "hello")
	assert.ErrorIs(t, err, boom)
}

func TestClearSave(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGame(t)
	startRun(t, g, 31, "")
	require.NoError(t, g.ClearSave(ctx))
	assert.Nil(t, g.Snapshot())
	_, ok, _ := store.Get(ctx, DefaultStorageKey)
	assert.False(t, ok)
}

func TestLegacySaveUsesStaticGraph(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	old := `{"seed":12,"day":3,"location":"halifax-hub","visited":["halifax-hub"],
		"resources":{"gas":5,"snacks":4,"ride":6,"money":30},
		"vehicle":{"id":"pickup","name":"Northern Pickup"},
		"log":["[Day 1] Set out."],"flags":{}}`
	require.NoError(t, store.Set(ctx, DefaultStorageKey, old))

	legacy := &world.LegacyData{
		Start: "halifax-hub",
		Nodes: []world.LegacyNode{
			{ID: "halifax-hub", Name: "Halifax Hub", Actions: []string{"shop"}, Connections: []world.LegacyLink{{ID: "truro"}}},
			{ID: "truro", Name: "Truro", Connections: []world.LegacyLink{{ID: "halifax-hub"}}},
		},
	}
	graph, err := world.FromLegacy(legacy)
	require.NoError(t, err)

	g := NewGame(store, staticSkeleton{testSkeleton()}, testLogger()).WithLegacyGraph(staticGraph{graph})
	require.NoError(t, g.Initialize(ctx))
	s := g.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, WorldLegacy, s.World.Type)
	assert.Equal(t, 1.15, s.Vehicle.Efficiency)
	assert.Equal(t, 9, s.MaxResources.Ride)
	assert.True(t, s.Knowledge["halifax-hub"].Seen)
	assert.NotNil(t, s.Encounters)

	w, err := g.EnsureWorld(ctx)
	require.NoError(t, err)
	assert.Same(t, graph, w)

	res, err := g.TravelTo(ctx, "truro")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.GasCost)
	assert.Equal(t, 4, g.Snapshot().Resources.Gas)
}
