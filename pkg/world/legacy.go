package world

import (
	"encoding/json"
	"fmt"
)

// LegacyLink is a static-graph connection: either a bare node id or an object.
type LegacyLink struct {
	ID        string   `json:"id"`
	Distance  *float64 `json:"distance,omitempty"`
	Rough     bool     `json:"rough,omitempty"`
	Label     string   `json:"label,omitempty"`
	Hazard    *float64 `json:"hazard,omitempty"`
	Roughness *float64 `json:"roughness,omitempty"`
}

// UnmarshalJSON accepts either "node-id" or {"id": "node-id", ...}.
func (l *LegacyLink) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*l = LegacyLink{ID: id}
		return nil
	}
	type Alias LegacyLink
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("connection must be a string or object: %w", err)
	}
	*l = LegacyLink(a)
	return nil
}

type LegacyNode struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ShortName   string       `json:"shortName,omitempty"`
	Kind        Kind         `json:"kind,omitempty"`
	Region      string       `json:"region,omitempty"`
	Coords      *Coords      `json:"coords,omitempty"`
	Actions     []string     `json:"actions,omitempty"`
	Connections []LegacyLink `json:"connections,omitempty"`
	Neighbors   []LegacyLink `json:"neighbors,omitempty"`
}

// LegacyData is the static graph file used by saves that predate
// procedural worlds.
type LegacyData struct {
	Start string       `json:"start,omitempty"`
	Nodes []LegacyNode `json:"nodes"`
}

// FromLegacy converts static graph data into a Graph. Missing connection
// values get defaults: distance 1, roughness 1.25 when rough else 1.0,
// hazard 0.35 when rough else 0.2.
func FromLegacy(data *LegacyData) (*Graph, error) {
	if data == nil || len(data.Nodes) == 0 {
		return nil, fmt.Errorf("legacy graph has no nodes")
	}
	g := &Graph{Start: data.Start}
	if g.Start == "" {
		g.Start = data.Nodes[0].ID
	}
	for _, ln := range data.Nodes {
		if ln.ID == "" {
			return nil, fmt.Errorf("legacy graph node without id")
		}
		n := &Node{
			ID:        ln.ID,
			Kind:      ln.Kind,
			Name:      ln.Name,
			ShortName: ln.ShortName,
			Region:    ln.Region,
			Actions:   unique(ln.Actions),
		}
		if n.Kind == "" {
			n.Kind = KindCheckpoint
		}
		if n.ShortName == "" {
			n.ShortName = ShortName(n.Name)
		}
		if n.Region == "" {
			n.Region = "Canada"
		}
		if ln.Coords != nil {
			n.Coords = *ln.Coords
		}
		links := ln.Connections
		if len(links) == 0 {
			links = ln.Neighbors
		}
		for _, l := range links {
			c := Connection{ID: l.ID, Distance: 1, Roughness: 1, Hazard: 0.2, Rough: l.Rough, Label: l.Label}
			if l.Rough {
				c.Roughness, c.Hazard = 1.25, 0.35
			}
			if l.Distance != nil {
				c.Distance = *l.Distance
			}
			if l.Roughness != nil {
				c.Roughness = *l.Roughness
			}
			if l.Hazard != nil {
				c.Hazard = *l.Hazard
			}
			addConnection(n, l.ID, c)
		}
		g.add(n)
	}
	if _, ok := g.Nodes[g.Start]; !ok {
		return nil, fmt.Errorf("legacy start node %q not found", g.Start)
	}
	g.buildEdges()
	return g, nil
}
