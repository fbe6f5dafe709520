package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
	"github.com/jwebster45206/canadian-trail/pkg/storage"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

var (
	ErrNoRun         = errors.New("no active run")
	ErrGameOver      = errors.New("run is over")
	ErrNoLegacyGraph = errors.New("legacy world graph is not configured")
)

// SkeletonLoader supplies the checkpoint skeleton procedural worlds are
// generated from.
type SkeletonLoader interface {
	LoadSkeleton(ctx context.Context) (*world.Skeleton, error)
}

// LegacyGraphLoader supplies the static graph older saves were played on.
type LegacyGraphLoader interface {
	LoadLegacyGraph(ctx context.Context) (*world.Graph, error)
}

// RunOptions configure a new run. A nil Seed draws a fresh one.
type RunOptions struct {
	Seed      *int64
	VehicleID string
}

// Game owns one save slot: the run record, its RNG stream and the world
// graph the run is played on. Every mutation is written through to the store
// before it returns. A Game is not safe for concurrent use.
type Game struct {
	store     storage.Store
	key       string
	skeletons SkeletonLoader
	legacy    LegacyGraphLoader
	worlds    *world.Cache
	logger    *slog.Logger

	state *State
	rng   *rng.RNG
	graph *world.Graph
}

// NewGame creates a game bound to store under DefaultStorageKey.
func NewGame(store storage.Store, skeletons SkeletonLoader, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		store:     store,
		key:       DefaultStorageKey,
		skeletons: skeletons,
		worlds:    world.NewCache(),
		logger:    logger,
	}
}

// WithStorageKey sets the key the run is saved under
// Returns the Game for method chaining
func (g *Game) WithStorageKey(key string) *Game {
	g.key = key
	return g
}

// WithLegacyGraph sets the loader used for saves created on the static graph
// Returns the Game for method chaining
func (g *Game) WithLegacyGraph(loader LegacyGraphLoader) *Game {
	g.legacy = loader
	return g
}

// WithWorldCache shares a generated-world cache between games
// Returns the Game for method chaining
func (g *Game) WithWorldCache(cache *world.Cache) *Game {
	g.worlds = cache
	return g
}

// Initialize restores the saved run, if any. An unreadable save is logged
// and treated as no save; store failures are returned.
func (g *Game) Initialize(ctx context.Context) error {
	g.state, g.rng, g.graph = nil, nil, nil
	raw, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		return fmt.Errorf("failed to load save %q: %w", g.key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		g.logger.Error("Failed to parse saved run, starting fresh", "key", g.key, "error", err)
		return nil
	}
	changed := Migrate(&s)
	g.state = &s
	g.restoreRNG()
	if changed {
		g.logger.Info("Migrated saved run", "key", g.key, "version", s.Version)
		return g.persist(ctx)
	}
	return nil
}

// Restore replaces the run with a previously captured snapshot.
func (g *Game) Restore(ctx context.Context, s *State) error {
	if s == nil {
		return ErrNoRun
	}
	s = s.Clone()
	Migrate(s)
	g.state, g.graph = s, nil
	g.restoreRNG()
	return g.persist(ctx)
}

func (g *Game) restoreRNG() {
	seed := uint32(g.state.Seed)
	st := g.state.RNGState
	if st == 0 {
		st = seed
	}
	g.rng = rng.NewWithState(seed, st)
	g.state.RNGState = g.rng.State()
}

// StartNewRun discards any current run and starts a fresh one at the start
// of a newly generated world.
func (g *Game) StartNewRun(ctx context.Context, opts RunOptions) (*State, error) {
	var seed int64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		s, err := rng.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	sk, err := g.loadSkeleton(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := g.worlds.Graph(sk, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to generate world: %w", err)
	}
	start, ok := graph.Node(graph.Start)
	if !ok {
		return nil, fmt.Errorf("world start node %q not found", graph.Start)
	}
	vehicle := VehicleByID(opts.VehicleID)
	limit := vehicle.Stats

	r := rng.New(uint32(seed))
	g.rng = r
	g.graph = graph
	g.state = &State{
		Version:       CurrentVersion,
		Seed:          seed,
		RNGState:      r.State(),
		Day:           1,
		Location:      start.ID,
		Visited:       []string{start.ID},
		Resources:     vehicle.Stats,
		MaxResources:  &limit,
		Vehicle:       vehicle.Vehicle,
		Party:         DefaultParty(),
		Log:           []string{},
		Flags:         map[string]bool{},
		ActionHistory: map[string]map[string]int{},
		Knowledge:     map[string]NodeKnowledge{start.ID: {Seen: true}},
		Encounters:    newEncounters(),
		World:         &WorldDescriptor{Seed: seed, Version: sk.Version(), Type: WorldProcedural},
	}
	g.appendLog(fmt.Sprintf("Set out from %s in the %s.", start.Name, vehicle.Name))
	g.logger.Info("Started new run", "key", g.key, "seed", seed, "vehicle", vehicle.ID)
	if err := g.persist(ctx); err != nil {
		return nil, err
	}
	return g.Snapshot(), nil
}

func newEncounters() *Encounters {
	return &Encounters{
		Flags:     map[string]bool{},
		Cooldowns: map[string]Cooldown{},
		Buffs:     []Buff{},
	}
}

func (g *Game) loadSkeleton(ctx context.Context) (*world.Skeleton, error) {
	if g.skeletons == nil {
		return nil, errors.New("world skeleton loader is not configured")
	}
	sk, err := g.skeletons.LoadSkeleton(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load world skeleton: %w", err)
	}
	return sk, nil
}

// Snapshot returns a deep copy of the run, or nil when there is none.
func (g *Game) Snapshot() *State {
	if g.state == nil {
		return nil
	}
	g.state.RNGState = g.rng.State()
	return g.state.Clone()
}

// HasRun reports whether a run exists, finished or not.
func (g *Game) HasRun() bool { return g.state != nil }

// Active reports whether there is a run that has not ended.
func (g *Game) Active() bool { return g.state != nil && !g.state.GameOver() }

// requireActive reports ErrNoRun or ErrGameOver when the run can no longer
// change.
func (g *Game) requireActive() error {
	if g.state == nil {
		return ErrNoRun
	}
	if g.state.GameOver() {
		return ErrGameOver
	}
	return nil
}

func (g *Game) Day() int {
	if g.state == nil {
		return 0
	}
	return g.state.Day
}

func (g *Game) Location() string {
	if g.state == nil {
		return ""
	}
	return g.state.Location
}

// Visited reports whether the party has been to nodeID.
func (g *Game) Visited(nodeID string) bool {
	return g.state != nil && g.state.HasVisited(nodeID)
}

// EnsureWorld resolves the world graph recorded on the run: the static graph
// for legacy saves, the generated world otherwise.
func (g *Game) EnsureWorld(ctx context.Context) (*world.Graph, error) {
	if g.graph != nil {
		return g.graph, nil
	}
	if g.state == nil {
		return nil, ErrNoRun
	}
	desc := g.state.World
	if desc == nil || desc.Type == WorldLegacy {
		if g.legacy == nil {
			return nil, ErrNoLegacyGraph
		}
		graph, err := g.legacy.LoadLegacyGraph(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load legacy graph: %w", err)
		}
		g.graph = graph
		return graph, nil
	}
	sk, err := g.loadSkeleton(ctx)
	if err != nil {
		return nil, err
	}
	if sk.Version() != desc.Version {
		g.logger.Warn("Saved world version differs from configuration",
			"saved_version", desc.Version,
			"config_version", sk.Version())
	}
	graph, err := g.worlds.Graph(sk, desc.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to generate world: %w", err)
	}
	g.graph = graph
	return graph, nil
}

// WorldGraph returns the resolved world graph, or nil before EnsureWorld
// has succeeded.
func (g *Game) WorldGraph() *world.Graph {
	return g.graph
}

// NextFloat draws from the run stream and saves the advanced state.
func (g *Game) NextFloat(ctx context.Context) (float64, error) {
	if g.rng == nil {
		return 0, ErrNoRun
	}
	f := g.rng.NextFloat()
	return f, g.persist(ctx)
}

// NextRange draws from the run stream and saves the advanced state.
func (g *Game) NextRange(ctx context.Context, min, max float64) (float64, error) {
	if g.rng == nil {
		return 0, ErrNoRun
	}
	v := g.rng.NextRange(min, max)
	return v, g.persist(ctx)
}

// AppendLog adds an entry to the run log.
func (g *Game) AppendLog(ctx context.Context, entry string) error {
	if g.state == nil || entry == "" {
		return nil
	}
	g.appendLog(entry)
	return g.persist(ctx)
}

func (g *Game) appendLog(entry string) {
	g.state.Log = append(g.state.Log, fmt.Sprintf("[Day %d] %s", g.state.Day, entry))
	if over := len(g.state.Log) - LogLimit; over > 0 {
		g.state.Log = append([]string(nil), g.state.Log[over:]...)
	}
}

// MarkGameOver ends the run. Later travel and actions are refused.
func (g *Game) MarkGameOver(ctx context.Context, reason string) error {
	if g.state == nil {
		return nil
	}
	g.state.Flags[FlagGameOver] = true
	if reason != "" {
		g.appendLog(reason)
	}
	g.logger.Info("Run ended", "key", g.key, "reason", reason, "day", g.state.Day)
	return g.persist(ctx)
}

// ClearSave forgets the run and removes it from the store.
func (g *Game) ClearSave(ctx context.Context) error {
	g.state, g.rng, g.graph = nil, nil, nil
	if err := g.store.Remove(ctx, g.key); err != nil {
		return fmt.Errorf("failed to clear save %q: %w", g.key, err)
	}
	return nil
}

// ResourcesDepleted lists the resources at or below zero.
func (g *Game) ResourcesDepleted() []string {
	if g.state == nil {
		return nil
	}
	var out []string
	for _, name := range ResourceNames {
		if v, _ := g.state.Resources.Get(name); v <= 0 {
			out = append(out, name)
		}
	}
	return out
}

func (g *Game) maxResources() Resources {
	if g.state.MaxResources != nil {
		return *g.state.MaxResources
	}
	return VehicleByID(g.state.Vehicle.ID).Stats
}

// AdjustResources applies signed changes by resource name, clamped to
// [0, max]. Unknown names are ignored.
func (g *Game) AdjustResources(ctx context.Context, changes map[string]int) (map[string]int, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	limit := g.maxResources()
	applied := make(map[string]int, len(changes))
	for _, name := range ResourceNames {
		delta, ok := changes[name]
		if !ok {
			continue
		}
		l, _ := limit.Get(name)
		applied[name] = g.state.Resources.adjust(name, delta, l)
	}
	return applied, g.persist(ctx)
}

// advanceTime moves the clock forward by whole segments, rolling into new days.
func (g *Game) advanceTime(segments int) {
	if segments <= 0 {
		return
	}
	total := g.state.TimeSegment + segments
	g.state.Day += total / SegmentsPerDay
	g.state.TimeSegment = total % SegmentsPerDay
}

// ShiftDays moves the calendar by whole days and resets to dawn. The day
// never drops below 1.
func (g *Game) ShiftDays(ctx context.Context, days int) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	if days == 0 {
		return nil
	}
	g.state.Day = max(1, g.state.Day+days)
	g.state.TimeSegment = 0
	return g.persist(ctx)
}

func (g *Game) persist(ctx context.Context) error {
	if g.state == nil {
		return nil
	}
	g.state.RNGState = g.rng.State()
	data, err := json.Marshal(g.state)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := g.store.Set(ctx, g.key, string(data)); err != nil {
		return fmt.Errorf("failed to save run %q: %w", g.key, err)
	}
	return nil
}
