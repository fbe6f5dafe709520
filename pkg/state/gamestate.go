package state

import (
	"maps"
	"slices"

	"github.com/jwebster45206/canadian-trail/pkg/actions"
)

const (
	// CurrentVersion is the save format written by this package.
	CurrentVersion = 2

	LogLimit          = 40
	SegmentsPerDay    = 4
	DefaultStorageKey = "canadian-trail-save"

	WorldProcedural = "procedural"
	WorldLegacy     = "legacy"

	FlagGameOver = "gameOver"
)

// TimeLabels names the four segments of a day.
var TimeLabels = [SegmentsPerDay]string{"Dawn", "Midday", "Dusk", "Night"}

// TimeLabel returns the display name of a time segment.
func TimeLabel(segment int) string {
	if segment < 0 || segment >= SegmentsPerDay {
		return TimeLabels[0]
	}
	return TimeLabels[segment]
}

// ResourceNames lists the resources in reporting order.
var ResourceNames = []string{"gas", "snacks", "ride", "money"}

type Resources struct {
	Gas    int `json:"gas"`
	Snacks int `json:"snacks"`
	Ride   int `json:"ride"`
	Money  int `json:"money"`
}

// Get returns the named resource.
func (r Resources) Get(name string) (int, bool) {
	switch name {
	case "gas":
		return r.Gas, true
	case "snacks":
		return r.Snacks, true
	case "ride":
		return r.Ride, true
	case "money":
		return r.Money, true
	}
	return 0, false
}

func (r *Resources) set(name string, v int) {
	switch name {
	case "gas":
		r.Gas = v
	case "snacks":
		r.Snacks = v
	case "ride":
		r.Ride = v
	case "money":
		r.Money = v
	}
}

// adjust adds delta to the named resource, clamped to [0, limit], and
// returns the change actually applied.
func (r *Resources) adjust(name string, delta, limit int) int {
	cur, ok := r.Get(name)
	if !ok {
		return 0
	}
	next := min(limit, max(0, cur+delta))
	r.set(name, next)
	return next - cur
}

// apply adds d within the bounds of limit and returns the applied change.
func (r *Resources) apply(d actions.Deltas, limit Resources) actions.Deltas {
	return actions.Deltas{
		Gas:    r.adjust("gas", d.Gas, limit.Gas),
		Snacks: r.adjust("snacks", d.Snacks, limit.Snacks),
		Ride:   r.adjust("ride", d.Ride, limit.Ride),
		Money:  r.adjust("money", d.Money, limit.Money),
	}
}

type Vehicle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	Efficiency  float64  `json:"efficiency"`
}

type MemberProfile struct {
	FamilyRole string `json:"familyRole,omitempty"`
	Age        *int   `json:"age,omitempty"`
}

type PartyMember struct {
	Name    string        `json:"name"`
	Role    string        `json:"role"`
	Health  int           `json:"health"`
	Status  string        `json:"status"`
	Profile MemberProfile `json:"profile"`
}

type BuffKind string

const (
	BuffTravelGas    BuffKind = "travel-gas"
	BuffTravelSnacks BuffKind = "travel-snacks"
	BuffHazard       BuffKind = "hazard"
	BuffSkipHazard   BuffKind = "skip-hazard"
	BuffPreviewTight BuffKind = "preview-tight"
	BuffGeneric      BuffKind = "generic"
)

const (
	TickTravel = "travel"
	TickManual = "manual"
)

// Buff is a temporary modifier granted by an encounter.
type Buff struct {
	ID        string         `json:"id"`
	Kind      BuffKind       `json:"kind"`
	Amount    float64        `json:"amount"`
	Remaining int            `json:"remaining"`
	Tick      string         `json:"tick"`
	Label     string         `json:"label,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

type Cooldown struct {
	Day int `json:"day"`
}

type Encounters struct {
	Flags     map[string]bool     `json:"flags"`
	Cooldowns map[string]Cooldown `json:"cooldowns"`
	Buffs     []Buff              `json:"buffs"`
}

type ExitHint struct {
	Hazard float64 `json:"hazard"`
}

// NodeKnowledge is what the party has learned about a node.
type NodeKnowledge struct {
	Seen  bool                `json:"seen"`
	Exits map[string]ExitHint `json:"exits,omitempty"`
}

// WorldDescriptor records which world a run was created with.
type WorldDescriptor struct {
	Seed    int64  `json:"seed"`
	Version int    `json:"version"`
	Type    string `json:"type"`
}

// State is the persisted record of a run. JSON field names match saves
// written by earlier versions of the game so they remain readable.
type State struct {
	Version       int                       `json:"version"`
	Seed          int64                     `json:"seed"`
	RNGState      uint32                    `json:"rngState"`
	Day           int                       `json:"day"`
	TimeSegment   int                       `json:"timeSegment"`
	Location      string                    `json:"location"`
	Visited       []string                  `json:"visited"`
	Resources     Resources                 `json:"resources"`
	MaxResources  *Resources                `json:"maxResources,omitempty"`
	Vehicle       Vehicle                   `json:"vehicle"`
	Party         []PartyMember             `json:"party"`
	Log           []string                  `json:"log"`
	Flags         map[string]bool           `json:"flags"`
	ActionHistory map[string]map[string]int `json:"actionHistory"`
	Knowledge     map[string]NodeKnowledge  `json:"knowledge"`
	Encounters    *Encounters               `json:"encounters,omitempty"`
	World         *WorldDescriptor          `json:"world,omitempty"`
}

// GameOver reports whether the run has ended.
func (s *State) GameOver() bool {
	return s.Flags[FlagGameOver]
}

// HasVisited reports whether the party has been to nodeID.
func (s *State) HasVisited(nodeID string) bool {
	return slices.Contains(s.Visited, nodeID)
}

// Clone returns a deep copy that shares nothing with s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Visited = slices.Clone(s.Visited)
	c.Vehicle.Traits = slices.Clone(s.Vehicle.Traits)
	c.Log = slices.Clone(s.Log)
	c.Flags = maps.Clone(s.Flags)
	if s.MaxResources != nil {
		m := *s.MaxResources
		c.MaxResources = &m
	}
	c.Party = make([]PartyMember, len(s.Party))
	for i, p := range s.Party {
		if p.Profile.Age != nil {
			age := *p.Profile.Age
			p.Profile.Age = &age
		}
		c.Party[i] = p
	}
	if s.ActionHistory != nil {
		c.ActionHistory = make(map[string]map[string]int, len(s.ActionHistory))
		for node, counts := range s.ActionHistory {
			c.ActionHistory[node] = maps.Clone(counts)
		}
	}
	if s.Knowledge != nil {
		c.Knowledge = make(map[string]NodeKnowledge, len(s.Knowledge))
		for id, k := range s.Knowledge {
			k.Exits = maps.Clone(k.Exits)
			c.Knowledge[id] = k
		}
	}
	if s.Encounters != nil {
		e := Encounters{
			Flags:     maps.Clone(s.Encounters.Flags),
			Cooldowns: maps.Clone(s.Encounters.Cooldowns),
			Buffs:     make([]Buff, len(s.Encounters.Buffs)),
		}
		for i, b := range s.Encounters.Buffs {
			b.Meta = maps.Clone(b.Meta)
			e.Buffs[i] = b
		}
		c.Encounters = &e
	}
	if s.World != nil {
		w := *s.World
		c.World = &w
	}
	return &c
}
