package world

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
)

var ErrNoCheckpoints = errors.New("world configuration missing checkpoints")

// ServiceOverrides replace individual checkpoint services.
type ServiceOverrides struct {
	Mechanic  *bool    `json:"mechanic,omitempty"`
	Shop      *bool    `json:"shop,omitempty"`
	Ferry     *bool    `json:"ferry,omitempty"`
	ShopCost  *float64 `json:"shopCost,omitempty"`
	FerryCost *float64 `json:"ferryCost,omitempty"`
}

func (o *ServiceOverrides) apply(s Services) Services {
	if o == nil {
		return s
	}
	if o.Mechanic != nil {
		s.Mechanic = *o.Mechanic
	}
	if o.Shop != nil {
		s.Shop = *o.Shop
	}
	if o.Ferry != nil {
		s.Ferry = *o.Ferry
	}
	if o.ShopCost != nil {
		s.ShopCost = Cost(*o.ShopCost)
	}
	if o.FerryCost != nil {
		s.FerryCost = Cost(*o.FerryCost)
	}
	return s
}

// Checkpoint is a fixed node of the skeleton, visited in order.
type Checkpoint struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ShortName string            `json:"shortName,omitempty"`
	Coords    *Coords           `json:"coords,omitempty"`
	Region    string            `json:"region,omitempty"`
	Actions   []string          `json:"actions"`
	Services  *ServiceOverrides `json:"services,omitempty"`
}

// Skeleton is the checkpoint configuration a world is generated from.
type Skeleton struct {
	WorldVersion int          `json:"worldVersion"`
	Checkpoints  []Checkpoint `json:"checkpoints"`
}

// Version returns the configured world version, defaulting to 1.
func (s *Skeleton) Version() int {
	if s.WorldVersion <= 0 {
		return 1
	}
	return s.WorldVersion
}

// Validate rejects skeletons that cannot produce a world.
func (s *Skeleton) Validate() error {
	if s == nil || len(s.Checkpoints) == 0 {
		return ErrNoCheckpoints
	}
	seen := make(map[string]bool, len(s.Checkpoints))
	for i, cp := range s.Checkpoints {
		if cp.ID == "" {
			return fmt.Errorf("checkpoint %d has no id", i)
		}
		if seen[cp.ID] {
			return fmt.Errorf("duplicate checkpoint id %q", cp.ID)
		}
		seen[cp.ID] = true
	}
	return nil
}

// Generate builds the world for baseSeed. It is pure: the same skeleton and
// seed always give an identical graph.
func Generate(sk *Skeleton, baseSeed int64) (*Graph, error) {
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	seed := uint32(baseSeed)
	version := sk.Version()
	r := rng.NewDerived(seed, "world", version)
	g := &Graph{Version: version, Seed: baseSeed, Start: sk.Checkpoints[0].ID}

	for i, cp := range sk.Checkpoints {
		profile := buildProfile(KindCheckpoint, rng.NewDerived(seed, "checkpoint", cp.ID, i))
		profile.Services = cp.Services.apply(profile.Services)
		n := &Node{
			ID:        cp.ID,
			Kind:      KindCheckpoint,
			Name:      cp.Name,
			ShortName: cp.ShortName,
			Region:    cp.Region,
			Profile:   profile,
		}
		if n.ShortName == "" {
			n.ShortName = ShortName(cp.Name)
		}
		if n.Region == "" {
			n.Region = "Canada"
		}
		if cp.Coords != nil {
			n.Coords = Coords{X: roundTo(cp.Coords.X, 2), Y: roundTo(cp.Coords.Y, 2)}
		}
		if cp.Actions != nil {
			n.Actions = unique(cp.Actions)
		} else {
			n.Actions = DefaultActions(KindCheckpoint)
		}
		g.add(n)
		g.Checkpoints = append(g.Checkpoints, cp.ID)
	}

	counter := 0
	for seg := 0; seg < len(sk.Checkpoints)-1; seg++ {
		start := g.Nodes[sk.Checkpoints[seg].ID]
		end := g.Nodes[sk.Checkpoints[seg+1].ID]
		counter = g.buildSegment(r, seg, start, end, counter)
	}

	g.buildEdges()
	return g, nil
}

func (g *Graph) buildSegment(r *rng.RNG, seg int, start, end *Node, counter int) int {
	mainCount := r.NextInt(2, 5)
	dirX := end.Coords.X - start.Coords.X
	dirY := end.Coords.Y - start.Coords.Y
	length := math.Hypot(dirX, dirY)
	if length == 0 {
		length = 1
	}
	normX, normY := dirX/length, dirY/length
	perpX, perpY := -normY, normX
	minX := math.Min(start.Coords.X, end.Coords.X)
	maxX := math.Max(start.Coords.X, end.Coords.X)

	path := []*Node{start}
	for i := 1; i <= mainCount; i++ {
		t := float64(i) / float64(mainCount+1)
		baseX := lerp(start.Coords.X, end.Coords.X, t)
		baseY := lerp(start.Coords.Y, end.Coords.Y, t)
		lateral := (r.NextFloat() - 0.5) * (length*0.35 + 3)
		forward := (r.NextFloat() - 0.5) * 3
		x := clamp(baseX+perpX*lateral+normX*forward, minX-4, maxX+4)
		y := clamp(baseY+perpY*lateral+normY*forward, 8, 92)
		kind := segmentKinds[r.NextInt(0, len(segmentKinds)-1)]
		region := end.Region
		if t < 0.5 {
			region = start.Region
		}
		id := fmt.Sprintf("%s-%s-mid-%d-%d-%d", start.ID, end.ID, seg, i, counter)
		counter++
		n := newNode(id, kind, Coords{X: x, Y: y}, region, r)
		g.add(n)
		path = append(path, n)
	}
	path = append(path, end)

	for i := 0; i < len(path)-1; i++ {
		connect(path[i], path[i+1])
	}

	if len(path) <= 2 {
		return counter
	}
	branchCount := r.NextInt(1, max(1, min(2, len(path)-1)))
	for b := 0; b < branchCount; b++ {
		baseIndex := r.NextInt(1, len(path)-2)
		reconnectIndex := min(len(path)-1, baseIndex+r.NextInt(1, 2))
		if reconnectIndex == baseIndex {
			continue
		}
		anchor, reconnect := path[baseIndex], path[reconnectIndex]
		branchLength := r.NextInt(1, 2)
		prev := anchor
		for step := 1; step <= branchLength; step++ {
			t := float64(step) / float64(branchLength+1)
			midX := lerp(anchor.Coords.X, reconnect.Coords.X, t)
			midY := lerp(anchor.Coords.Y, reconnect.Coords.Y, t)
			dir := 1.0
			if r.NextFloat() < 0.5 {
				dir = -1
			}
			mag := (r.NextFloat()*0.6 + 0.4) * length * 0.6
			x := clamp(midX+perpX*mag*dir, minX-6, maxX+6)
			y := clamp(midY+perpY*mag*dir, 6, 94)
			kind := branchKinds[r.NextInt(0, len(branchKinds)-1)]
			id := fmt.Sprintf("%s-spur-%d-%d-%d-%d", anchor.ID, seg, b, step, counter)
			counter++
			n := newNode(id, kind, Coords{X: x, Y: y}, anchor.Region, r)
			g.add(n)
			connect(prev, n)
			prev = n
		}
		connect(prev, reconnect)
	}
	return counter
}

// newNode draws the profile before the name.
func newNode(id string, kind Kind, c Coords, region string, r *rng.RNG) *Node {
	profile := buildProfile(kind, r)
	name := buildName(kind, r)
	return &Node{
		ID:        id,
		Kind:      kind,
		Name:      name,
		ShortName: ShortName(name),
		Coords:    Coords{X: roundTo(c.X, 2), Y: roundTo(c.Y, 2)},
		Region:    region,
		Actions:   unique(template(kind).actions),
		Profile:   profile,
	}
}

func connect(a, b *Node) {
	dist := math.Max(0.6, math.Hypot(b.Coords.X-a.Coords.X, b.Coords.Y-a.Coords.Y)/12)
	roughness := (profileValue(a, func(p *Profile) float64 { return p.Roughness }, 1) +
		profileValue(b, func(p *Profile) float64 { return p.Roughness }, 1)) / 2
	hazard := (profileValue(a, func(p *Profile) float64 { return p.Hazard }, 0.2) +
		profileValue(b, func(p *Profile) float64 { return p.Hazard }, 0.2)) / 2
	c := Connection{
		Distance:  roundTo(dist, 2),
		Roughness: roundTo(roughness, 3),
		Rough:     roughness > 1.15,
		Hazard:    roundTo(hazard, 3),
	}
	addConnection(a, b.ID, c)
	addConnection(b, a.ID, c)
}

func addConnection(n *Node, target string, c Connection) {
	if _, exists := n.Connection(target); exists {
		return
	}
	c.ID = target
	n.Connections = append(n.Connections, c)
}

func profileValue(n *Node, get func(*Profile) float64, fallback float64) float64 {
	if n.Profile == nil {
		return fallback
	}
	return get(n.Profile)
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Cache memoizes generated graphs per seed and world version. Generated
// graphs are shared between callers and must not be mutated.
type Cache struct {
	mu     sync.Mutex
	graphs map[string]*Graph
}

func NewCache() *Cache {
	return &Cache{graphs: make(map[string]*Graph)}
}

// Graph returns the cached world for seed, generating it on first use.
func (c *Cache) Graph(sk *Skeleton, seed int64) (*Graph, error) {
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d:%d", seed, sk.Version())
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.graphs[key]; ok {
		return g, nil
	}
	g, err := Generate(sk, seed)
	if err != nil {
		return nil, err
	}
	c.graphs[key] = g
	return g, nil
}

// Reset drops every cached graph.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graphs = make(map[string]*Graph)
}

// Len reports how many graphs are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.graphs)
}
