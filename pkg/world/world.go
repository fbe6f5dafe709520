// Package world holds the travel graph: nodes, their resource profiles and
// the connections between them, plus the procedural generator that builds a
// graph from a checkpoint skeleton and a seed.
package world

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindCheckpoint Kind = "checkpoint"
	KindGas        Kind = "gas"
	KindForest     Kind = "forest"
	KindMechanic   Kind = "mechanic"
	KindTown       Kind = "town"
	KindFerry      Kind = "ferry"
	KindGhost      Kind = "ghost"
	KindVista      Kind = "vista"
)

var titleCaser = cases.Title(language.English)

// Label returns the kind title-cased for display, e.g. "Ghost".
func (k Kind) Label() string {
	return Title(string(k))
}

// Title title-cases an identifier for display.
func Title(s string) string {
	return titleCaser.String(s)
}

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Yields are the per-resource ranges an action at a node draws from.
type Yields struct {
	Gas    Range `json:"gas"`
	Snacks Range `json:"snacks"`
	Ride   Range `json:"ride"`
	Money  Range `json:"money"`
}

// Services lists what a node offers. A nil cost is unset; an explicit zero
// is kept.
type Services struct {
	Mechanic  bool     `json:"mechanic,omitempty"`
	Shop      bool     `json:"shop,omitempty"`
	Ferry     bool     `json:"ferry,omitempty"`
	ShopCost  *float64 `json:"shopCost,omitempty"`
	FerryCost *float64 `json:"ferryCost,omitempty"`
}

// Cost returns a pointer to v for the service cost fields.
func Cost(v float64) *float64 { return &v }

// Profile describes what a node is like: all factors are in [0, 1] except
// roughness, which multiplies travel cost around 1.0.
type Profile struct {
	Abundance   float64  `json:"abundance"`
	Prosperity  float64  `json:"prosperity"`
	Maintenance float64  `json:"maintenance"`
	Hazard      float64  `json:"hazard"`
	Roughness   float64  `json:"roughness"`
	Yields      Yields   `json:"yields"`
	Services    Services `json:"services"`
}

type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connection is a directed edge out of a node. Every connection has a mirror
// on the target node with the same distance, roughness and hazard.
type Connection struct {
	ID        string  `json:"id"`
	Distance  float64 `json:"distance"`
	Roughness float64 `json:"roughness"`
	Rough     bool    `json:"rough"`
	Hazard    float64 `json:"hazard"`
	Label     string  `json:"label,omitempty"`
}

type Node struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	Name        string       `json:"name"`
	ShortName   string       `json:"shortName"`
	Coords      Coords       `json:"coords"`
	Region      string       `json:"region"`
	Actions     []string     `json:"actions"`
	Profile     *Profile     `json:"profile,omitempty"`
	Connections []Connection `json:"connections"`
}

// Connection returns the connection from n to id, if any.
func (n *Node) Connection(id string) (Connection, bool) {
	for _, c := range n.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

// HasAction reports whether the node offers the action.
func (n *Node) HasAction(id string) bool {
	for _, a := range n.Actions {
		if a == id {
			return true
		}
	}
	return false
}

type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is an immutable world. Nodes are also kept in creation order.
type Graph struct {
	Version     int              `json:"version"`
	Seed        int64            `json:"seed"`
	Start       string           `json:"start"`
	Nodes       map[string]*Node `json:"nodes"`
	Order       []string         `json:"order"`
	Edges       []Edge           `json:"edges"`
	Checkpoints []string         `json:"checkpoints"`
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// Neighbors returns the connections out of id in graph order.
func (g *Graph) Neighbors(id string) []Connection {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	return n.Connections
}

func (g *Graph) add(n *Node) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	g.Nodes[n.ID] = n
	g.Order = append(g.Order, n.ID)
}

func (g *Graph) buildEdges() {
	g.Edges = g.Edges[:0]
	for _, id := range g.Order {
		for _, c := range g.Nodes[id].Connections {
			g.Edges = append(g.Edges, Edge{From: id, To: c.ID})
		}
	}
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// round rounds half away from zero, which matches round-half-up for the
// non-negative values used throughout the graph.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
