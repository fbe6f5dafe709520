package state

import (
	"context"
	"fmt"
)

// EncounterCooldown returns when eventID last fired.
func (g *Game) EncounterCooldown(eventID string) (Cooldown, bool) {
	if g.state == nil {
		return Cooldown{}, false
	}
	cd, ok := g.state.Encounters.Cooldowns[eventID]
	return cd, ok
}

// RecordEncounterTrigger stamps eventID with the current day.
func (g *Game) RecordEncounterTrigger(ctx context.Context, eventID string) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	g.state.Encounters.Cooldowns[eventID] = Cooldown{Day: g.state.Day}
	return g.persist(ctx)
}

func (g *Game) HasEncounterFlag(flag string) bool {
	return g.state != nil && g.state.Encounters.Flags[flag]
}

func (g *Game) SetEncounterFlag(ctx context.Context, flag string, value bool) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	if !value {
		return g.ClearEncounterFlag(ctx, flag)
	}
	g.state.Encounters.Flags[flag] = true
	return g.persist(ctx)
}

func (g *Game) ClearEncounterFlag(ctx context.Context, flag string) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	delete(g.state.Encounters.Flags, flag)
	return g.persist(ctx)
}

// EncounterBuffs returns a copy of the active buffs.
func (g *Game) EncounterBuffs() []Buff {
	if g.state == nil {
		return nil
	}
	return append([]Buff(nil), g.state.Encounters.Buffs...)
}

// AddEncounterBuff adds b, replacing any buff with the same id so ids stay
// unique. Remaining defaults to 1 and tick to manual for skip-hazard,
// travel otherwise.
func (g *Game) AddEncounterBuff(ctx context.Context, b Buff) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	if b.ID == "" {
		return fmt.Errorf("buff requires an id")
	}
	if b.Kind == "" {
		b.Kind = BuffGeneric
	}
	if b.Remaining <= 0 {
		b.Remaining = 1
	}
	if b.Tick == "" {
		b.Tick = TickTravel
		if b.Kind == BuffSkipHazard {
			b.Tick = TickManual
		}
	}
	buffs := g.state.Encounters.Buffs
	replaced := false
	for i := range buffs {
		if buffs[i].ID == b.ID {
			buffs[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		g.state.Encounters.Buffs = append(buffs, b)
	}
	return g.persist(ctx)
}

// RemoveEncounterBuff drops the buff with id and reports whether it existed.
func (g *Game) RemoveEncounterBuff(ctx context.Context, id string) (bool, error) {
	return g.removeBuffs(ctx, func(b Buff) bool { return b.ID == id })
}

// RemoveEncounterBuffsByKind drops every buff of kind.
func (g *Game) RemoveEncounterBuffsByKind(ctx context.Context, kind BuffKind) (bool, error) {
	return g.removeBuffs(ctx, func(b Buff) bool { return b.Kind == kind })
}

func (g *Game) removeBuffs(ctx context.Context, match func(Buff) bool) (bool, error) {
	if err := g.requireActive(); err != nil {
		return false, err
	}
	kept := make([]Buff, 0, len(g.state.Encounters.Buffs))
	for _, b := range g.state.Encounters.Buffs {
		if !match(b) {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(g.state.Encounters.Buffs) {
		return false, nil
	}
	g.state.Encounters.Buffs = kept
	return true, g.persist(ctx)
}

// RevealOptions control RevealNeighbors. A nil MaxHazard reveals every
// neighbor.
type RevealOptions struct {
	HazardHints bool
	MaxHazard   *float64
}

// RevealNeighbors marks the neighbors of nodeID as seen and returns their
// ids in connection order. With HazardHints the hazard of each revealed
// exit is recorded on nodeID.
func (g *Game) RevealNeighbors(ctx context.Context, nodeID string, opts RevealOptions) ([]string, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return nil, err
	}
	revealed := []string{}
	origin := g.state.Knowledge[nodeID]
	for _, c := range graph.Neighbors(nodeID) {
		if opts.MaxHazard != nil && c.Hazard > *opts.MaxHazard {
			continue
		}
		k := g.state.Knowledge[c.ID]
		k.Seen = true
		g.state.Knowledge[c.ID] = k
		if opts.HazardHints {
			if origin.Exits == nil {
				origin.Exits = map[string]ExitHint{}
			}
			origin.Exits[c.ID] = ExitHint{Hazard: c.Hazard}
		}
		revealed = append(revealed, c.ID)
	}
	if opts.HazardHints && len(revealed) > 0 {
		g.state.Knowledge[nodeID] = origin
	}
	return revealed, g.persist(ctx)
}

// TeleportOptions control TeleportTo.
type TeleportOptions struct {
	DayShift        int
	Log             string
	RevealNeighbors bool
	HazardHints     bool
}

// TeleportTo moves the party straight to nodeID without travel costs.
func (g *Game) TeleportTo(ctx context.Context, nodeID string, opts TeleportOptions) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return err
	}
	if _, ok := graph.Node(nodeID); !ok {
		return fmt.Errorf("teleport target %q not found", nodeID)
	}
	s := g.state
	s.Location = nodeID
	if !s.HasVisited(nodeID) {
		s.Visited = append(s.Visited, nodeID)
	}
	k := s.Knowledge[nodeID]
	k.Seen = true
	s.Knowledge[nodeID] = k
	if opts.DayShift != 0 {
		s.Day = max(1, s.Day+opts.DayShift)
		s.TimeSegment = 0
	}
	if opts.Log != "" {
		g.appendLog(opts.Log)
	}
	if opts.RevealNeighbors {
		_, err := g.RevealNeighbors(ctx, nodeID, RevealOptions{HazardHints: opts.HazardHints})
		return err
	}
	return g.persist(ctx)
}
