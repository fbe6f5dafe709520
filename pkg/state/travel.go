package state

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

// TravelEstimate is the expected cost of one trip along a connection.
type TravelEstimate struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	ToName    string      `json:"toName"`
	Distance  float64     `json:"distance"`
	Roughness float64     `json:"roughness"`
	Rough     bool        `json:"rough"`
	Hazard    float64     `json:"hazard"`
	GasCost   int         `json:"gasCost"`
	SnackCost int         `json:"snackCost"`
	RideRange world.Range `json:"rideRange"`
	Protected bool        `json:"protected"`
}

// TravelResult reports what a completed trip cost.
type TravelResult struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	GasCost     int      `json:"gasCost"`
	SnackCost   int      `json:"snackCost"`
	RideDamage  int      `json:"rideDamage"`
	Hazard      float64  `json:"hazard"`
	Protected   bool     `json:"protected"`
	Hungry      bool     `json:"hungry"`
	Depleted    []string `json:"depleted"`
	Day         int      `json:"day"`
	TimeSegment int      `json:"timeSegment"`
	Message     string   `json:"message"`
}

// hazardTierMax is the most ride a trip at this hazard can cost.
func hazardTierMax(hazard float64) int {
	switch {
	case hazard <= 0.15:
		return 0
	case hazard <= 0.45:
		return 1
	case hazard <= 0.7:
		return 2
	default:
		return 3
	}
}

// rollRideDamage draws the ride damage for one trip. Hazards at or below
// 0.15 consume no draws.
func rollRideDamage(hazard float64, r *rng.RNG) int {
	if hazard <= 0.15 {
		return 0
	}
	if r.NextFloat() >= hazard {
		return 0
	}
	switch {
	case hazard > 0.7:
		if r.NextFloat() < 0.5 {
			return 3
		}
		return 2
	case hazard > 0.45:
		return 2
	default:
		return 1
	}
}

func (g *Game) buffTotal(kind BuffKind) float64 {
	total := 0.0
	for _, b := range g.state.Encounters.Buffs {
		if b.Kind == kind {
			total += b.Amount
		}
	}
	return total
}

func (g *Game) hasBuff(kind BuffKind) bool {
	for _, b := range g.state.Encounters.Buffs {
		if b.Kind == kind {
			return true
		}
	}
	return false
}

func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

// TravelEstimate derives the cost of travelling from one node to a
// neighbor. It returns nil when the nodes are not connected. It does not
// change the run.
func (g *Game) TravelEstimate(ctx context.Context, from, to string) (*TravelEstimate, error) {
	if g.state == nil {
		return nil, nil
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return nil, err
	}
	return g.estimate(graph, from, to), nil
}

func (g *Game) estimate(graph *world.Graph, from, to string) *TravelEstimate {
	origin, ok := graph.Node(from)
	if !ok {
		return nil
	}
	conn, ok := origin.Connection(to)
	if !ok {
		return nil
	}
	target, ok := graph.Node(to)
	if !ok {
		return nil
	}
	efficiency := g.state.Vehicle.Efficiency
	if efficiency <= 0 {
		efficiency = 1
	}
	roughness := conn.Roughness
	if roughness <= 0 {
		roughness = 1
	}
	hazard := math.Max(0, math.Min(1, conn.Hazard+g.buffTotal(BuffHazard)))
	est := &TravelEstimate{
		From:      from,
		To:        to,
		ToName:    target.Name,
		Distance:  conn.Distance,
		Roughness: roughness,
		Rough:     conn.Rough,
		Hazard:    hazard,
		GasCost:   max(0, max(1, roundInt(conn.Distance*efficiency*roughness))+roundInt(g.buffTotal(BuffTravelGas))),
		SnackCost: max(0, 1+roundInt(g.buffTotal(BuffTravelSnacks))),
		RideRange: world.Range{Min: 0, Max: hazardTierMax(hazard)},
	}
	if g.hasBuff(BuffSkipHazard) {
		est.Protected = true
		est.RideRange = world.Range{}
	}
	return est
}

// TravelTo moves the party along a connection from the current location.
// It returns nil without changing anything when there is no active run, the
// target is the current location or the nodes are not connected.
func (g *Game) TravelTo(ctx context.Context, nodeID string) (*TravelResult, error) {
	if !g.Active() || nodeID == g.state.Location {
		return nil, nil
	}
	graph, err := g.EnsureWorld(ctx)
	if err != nil {
		return nil, err
	}
	est := g.estimate(graph, g.state.Location, nodeID)
	if est == nil {
		return nil, nil
	}
	s := g.state

	g.advanceTime(1)
	s.Resources.Gas = max(0, s.Resources.Gas-est.GasCost)
	s.Resources.Snacks = max(0, s.Resources.Snacks-est.SnackCost)

	damage, spent := 0, ""
	if est.Protected {
		spent = g.consumeBuff(BuffSkipHazard)
	} else {
		damage = rollRideDamage(est.Hazard, g.rng)
	}
	s.Resources.Ride = max(0, s.Resources.Ride-damage)

	hungry := s.Resources.Snacks <= 0
	if hungry {
		for i := range s.Party {
			s.Party[i].Status = "Peckish"
		}
	}

	from := s.Location
	s.Location = nodeID
	if !s.HasVisited(nodeID) {
		s.Visited = append(s.Visited, nodeID)
	}
	k := s.Knowledge[nodeID]
	k.Seen = true
	s.Knowledge[nodeID] = k

	g.tickTravelBuffs(spent)

	parts := []string{fmt.Sprintf("-%d gas", est.GasCost), fmt.Sprintf("-%d snacks", est.SnackCost)}
	if damage > 0 {
		parts = append(parts, fmt.Sprintf("ride -%d", damage))
	}
	msg := fmt.Sprintf("Drove to %s. %s.", est.ToName, strings.Join(parts, ", "))
	if est.Protected {
		msg += " Hazards avoided."
	}
	g.appendLog(msg)
	if hungry {
		g.appendLog("The snack bin is empty. Everyone is peckish.")
	}
	depleted := g.ResourcesDepleted()
	if len(depleted) > 0 {
		g.appendLog("Running on empty: " + strings.Join(depleted, ", ") + ".")
	}
	g.logger.Debug("Travelled",
		"from", from,
		"to", nodeID,
		"gas", est.GasCost,
		"ride_damage", damage)

	if err := g.persist(ctx); err != nil {
		return nil, err
	}
	return &TravelResult{
		From:        from,
		To:          nodeID,
		GasCost:     est.GasCost,
		SnackCost:   est.SnackCost,
		RideDamage:  damage,
		Hazard:      est.Hazard,
		Protected:   est.Protected,
		Hungry:      hungry,
		Depleted:    depleted,
		Day:         s.Day,
		TimeSegment: s.TimeSegment,
		Message:     msg,
	}, nil
}

// consumeBuff uses one charge of the first buff of kind and returns its id.
func (g *Game) consumeBuff(kind BuffKind) string {
	buffs := g.state.Encounters.Buffs
	for i := range buffs {
		if buffs[i].Kind != kind {
			continue
		}
		id := buffs[i].ID
		buffs[i].Remaining--
		if buffs[i].Remaining <= 0 {
			g.state.Encounters.Buffs = append(buffs[:i:i], buffs[i+1:]...)
		}
		return id
	}
	return ""
}

// tickTravelBuffs charges every travel buff for one trip. The buff named by
// spent already paid for this trip.
func (g *Game) tickTravelBuffs(spent string) {
	kept := g.state.Encounters.Buffs[:0:0]
	for _, b := range g.state.Encounters.Buffs {
		if b.Tick == TickTravel && (spent == "" || b.ID != spent) {
			b.Remaining--
			if b.Remaining <= 0 {
				continue
			}
		}
		kept = append(kept, b)
	}
	g.state.Encounters.Buffs = kept
}
