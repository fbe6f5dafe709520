// Package actions is the catalog of things the party can do at a node:
// siphon, forage, tinker, scavenge, ferry and shop. Previews are pure; rolls
// draw from a stream derived from the run seed, node, action and usage count
// so the same attempt always has the same result.
package actions

import (
	"math"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

const (
	Siphon   = "siphon"
	Forage   = "forage"
	Tinker   = "tinker"
	Scavenge = "scavenge"
	Ferry    = "ferry"
	Shop     = "shop"
)

// Deltas is a signed change to each resource.
type Deltas struct {
	Gas    int `json:"gas"`
	Snacks int `json:"snacks"`
	Ride   int `json:"ride"`
	Money  int `json:"money"`
}

type ResourceRange struct {
	Resource string `json:"resource"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

type Cost struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

type Preview struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Yields      []ResourceRange `json:"yields"`
	Costs       []Cost          `json:"costs"`
	Mishaps     []ResourceRange `json:"mishaps"`
	TimeCost    int             `json:"timeCost"`
}

type Outcome struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deltas      Deltas `json:"deltas"`
	TimeCost    int    `json:"timeCost"`
	Message     string `json:"message"`
}

// Action is a single catalog entry.
type Action interface {
	ID() string
	Title() string
	Description() string
	Preview(n *world.Node) Preview
	Roll(n *world.Node, r *rng.RNG) Outcome
}

var order = []string{Siphon, Forage, Tinker, Scavenge, Ferry, Shop}

var catalog = map[string]Action{
	Siphon:   siphon{},
	Forage:   forage{},
	Tinker:   tinker{},
	Scavenge: scavenge{},
	Ferry:    ferry{},
	Shop:     shop{},
}

// Get returns the action definition for id.
func Get(id string) (Action, bool) {
	a, ok := catalog[id]
	return a, ok
}

// List returns every action id in catalog order.
func List() []string {
	return append([]string(nil), order...)
}

// ComputePreview returns the preview for an action at n, or nil for an
// unknown action.
func ComputePreview(n *world.Node, id string) *Preview {
	a, ok := Get(id)
	if !ok {
		return nil
	}
	p := a.Preview(n)
	return &p
}

// RollOutcome resolves an action attempt. The stream is derived from seed,
// the node id, the action id and usage, so repeating the same attempt
// repeats the result. Unknown actions return nil.
func RollOutcome(id string, n *world.Node, seed uint32, usage int) *Outcome {
	a, ok := Get(id)
	if !ok || n == nil {
		return nil
	}
	out := a.Roll(n, rng.NewDerived(seed, n.ID, id, usage))
	return &out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// normalize rounds and floors a yield range at zero, using def when the node
// has no profile.
func normalize(n *world.Node, pick func(world.Yields) world.Range, def world.Range) world.Range {
	r := def
	if n != nil && n.Profile != nil {
		r = pick(n.Profile.Yields)
	}
	min := max(0, r.Min)
	return world.Range{Min: min, Max: max(min, r.Max)}
}

func hazardOf(n *world.Node, def float64) float64 {
	if n == nil || n.Profile == nil {
		return def
	}
	return clamp01(n.Profile.Hazard)
}

func abundanceOf(n *world.Node) float64 {
	if n == nil || n.Profile == nil {
		return 0.4
	}
	return clamp01(n.Profile.Abundance)
}

func hasMechanic(n *world.Node) bool {
	return n != nil && n.Profile != nil && n.Profile.Services.Mechanic
}

func ferryCost(n *world.Node) int {
	base := 4.0
	if n != nil && n.Profile != nil && n.Profile.Services.FerryCost != nil {
		base = *n.Profile.Services.FerryCost
	}
	return max(1, round(base))
}

func shopCost(n *world.Node) int {
	if n != nil && n.Profile != nil && n.Profile.Services.ShopCost != nil {
		return max(1, round(*n.Profile.Services.ShopCost))
	}
	prosperity := 0.5
	if n != nil && n.Profile != nil {
		prosperity = clamp01(n.Profile.Prosperity)
	}
	return max(2, round(3+prosperity*3))
}

func pickInt(r *rng.RNG, rg world.Range) int {
	return r.NextInt(rg.Min, rg.Max)
}

func mishap(rideMax int) []ResourceRange {
	if rideMax == 0 {
		return []ResourceRange{}
	}
	return []ResourceRange{{Resource: "ride", Min: 0, Max: rideMax}}
}

func gasYield(y world.Yields) world.Range   { return y.Gas }
func snackYield(y world.Yields) world.Range { return y.Snacks }
func rideYield(y world.Yields) world.Range  { return y.Ride }
func moneyYield(y world.Yields) world.Range { return y.Money }
