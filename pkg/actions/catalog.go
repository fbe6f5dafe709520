package actions

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

func message(parts []string) string {
	return strings.Join(parts, ", ") + "."
}

type siphon struct{}

func (siphon) ID() string          { return Siphon }
func (siphon) Title() string       { return "Siphon" }
func (siphon) Description() string { return "Trade time for gas at risk of fumes." }

func (a siphon) Preview(n *world.Node) Preview {
	gas := normalize(n, gasYield, world.Range{Min: 1, Max: 3})
	hazard := hazardOf(n, 0.2)
	rideMax := 0
	switch {
	case hazard > 0.7:
		rideMax = 2
	case hazard > 0.45:
		rideMax = 1
	}
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields:   []ResourceRange{{Resource: "gas", Min: gas.Min, Max: gas.Max}},
		Costs:    []Cost{},
		Mishaps:  mishap(rideMax),
		TimeCost: 1,
	}
}

func (a siphon) Roll(n *world.Node, r *rng.RNG) Outcome {
	gain := pickInt(r, normalize(n, gasYield, world.Range{Min: 1, Max: 3}))
	hazard := hazardOf(n, 0.2)
	chance := min(0.85, hazard+0.15)
	damage := 0
	if chance > 0 && r.NextFloat() < chance {
		damage = 1
		if hazard > 0.75 {
			damage = 2
		}
		if hazard > 0.9 && r.NextFloat() < 0.35 {
			damage++
		}
	}
	parts := []string{fmt.Sprintf("Siphoned %d gas", gain)}
	if damage > 0 {
		parts = append(parts, fmt.Sprintf("ride -%d", damage))
	}
	return a.outcome(Deltas{Gas: gain, Ride: -damage}, parts)
}

func (a siphon) outcome(d Deltas, parts []string) Outcome {
	return Outcome{ID: a.ID(), Title: a.Title(), Description: a.Description(), Deltas: d, TimeCost: 1, Message: message(parts)}
}

type forage struct{}

func (forage) ID() string          { return Forage }
func (forage) Title() string       { return "Forage" }
func (forage) Description() string { return "Scout nearby forests for berries and jerky." }

func (a forage) Preview(n *world.Node) Preview {
	snacks := normalize(n, snackYield, world.Range{Min: 1, Max: 4})
	rideMax := 0
	if hazardOf(n, 0.15) > 0.55 {
		rideMax = 1
	}
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields:   []ResourceRange{{Resource: "snacks", Min: snacks.Min, Max: snacks.Max}},
		Costs:    []Cost{},
		Mishaps:  mishap(rideMax),
		TimeCost: 1,
	}
}

func (a forage) Roll(n *world.Node, r *rng.RNG) Outcome {
	gain := pickInt(r, normalize(n, snackYield, world.Range{Min: 1, Max: 4}))
	hazard := hazardOf(n, 0.15)
	damage := 0
	if hazard > 0.4 && r.NextFloat() < hazard/2 {
		damage = 1
	}
	bonus := 0
	if r.NextFloat() < abundanceOf(n)*0.3 {
		bonus = 1
	}
	parts := []string{fmt.Sprintf("Foraged %d snacks", gain)}
	if bonus > 0 {
		parts = append(parts, fmt.Sprintf("found %d gas can", bonus))
	}
	if damage > 0 {
		parts = append(parts, "scrapes cost 1 ride")
	}
	return Outcome{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Deltas:   Deltas{Gas: bonus, Snacks: gain, Ride: -damage},
		TimeCost: 1,
		Message:  message(parts),
	}
}

type tinker struct{}

func (tinker) ID() string          { return Tinker }
func (tinker) Title() string       { return "Tinker" }
func (tinker) Description() string { return "Repair the ride with spare parts and elbow grease." }

func tinkerGasCost(n *world.Node) int {
	if hasMechanic(n) {
		return 1
	}
	return 2
}

func (a tinker) Preview(n *world.Node) Preview {
	ride := normalize(n, rideYield, world.Range{Min: 1, Max: 3})
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields:   []ResourceRange{{Resource: "ride", Min: ride.Min, Max: ride.Max}},
		Costs:    []Cost{{Resource: "gas", Amount: tinkerGasCost(n)}},
		Mishaps:  []ResourceRange{},
		TimeCost: 1,
	}
}

func (a tinker) Roll(n *world.Node, r *rng.RNG) Outcome {
	gain := pickInt(r, normalize(n, rideYield, world.Range{Min: 1, Max: 3}))
	bonus := 0
	if hasMechanic(n) {
		bonus = 1
	}
	total := max(1, gain+bonus)
	cost := tinkerGasCost(n)
	return Outcome{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Deltas:   Deltas{Gas: -cost, Ride: total},
		TimeCost: 1,
		Message:  message([]string{fmt.Sprintf("Ride +%d", total), fmt.Sprintf("spent %d gas", cost)}),
	}
}

type scavenge struct{}

func (scavenge) ID() string          { return Scavenge }
func (scavenge) Title() string       { return "Scavenge" }
func (scavenge) Description() string { return "Pick through the area for loose change and parts." }

func (a scavenge) Preview(n *world.Node) Preview {
	money := normalize(n, moneyYield, world.Range{Min: 1, Max: 4})
	hazard := hazardOf(n, 0.35)
	rideMax := 0
	switch {
	case hazard > 0.6:
		rideMax = 2
	case hazard > 0.4:
		rideMax = 1
	}
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields:   []ResourceRange{{Resource: "money", Min: money.Min, Max: money.Max}},
		Costs:    []Cost{},
		Mishaps:  mishap(rideMax),
		TimeCost: 1,
	}
}

// Roll draws cash first, then the gas find, then damage.
func (a scavenge) Roll(n *world.Node, r *rng.RNG) Outcome {
	cash := pickInt(r, normalize(n, moneyYield, world.Range{Min: 1, Max: 4}))
	gas := 0
	if r.NextFloat() < abundanceOf(n)*0.25 {
		gas = 1
	}
	hazard := hazardOf(n, 0.35)
	damage := 0
	if hazard > 0.3 && r.NextFloat() < hazard*0.6 {
		damage = 1
		if hazard > 0.75 && r.NextFloat() < 0.4 {
			damage = 2
		}
	}
	parts := []string{fmt.Sprintf("Scavenged $%d", cash)}
	if gas > 0 {
		parts = append(parts, "plus 1 gas")
	}
	if damage > 0 {
		parts = append(parts, fmt.Sprintf("ride -%d", damage))
	}
	return Outcome{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Deltas:   Deltas{Gas: gas, Ride: -damage, Money: cash},
		TimeCost: 1,
		Message:  message(parts),
	}
}

type ferry struct{}

func (ferry) ID() string          { return Ferry }
func (ferry) Title() string       { return "Ferry" }
func (ferry) Description() string { return "Pay a toll to cross water safely." }

func (a ferry) Preview(n *world.Node) Preview {
	ride := normalize(n, rideYield, world.Range{Min: 1, Max: 3})
	snacks := normalize(n, snackYield, world.Range{Min: 0, Max: 2})
	snackMin := 0
	if snacks.Min > 0 {
		snackMin = 1
	}
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields: []ResourceRange{
			{Resource: "ride", Min: ride.Min, Max: ride.Max},
			{Resource: "snacks", Min: snackMin, Max: snacks.Max},
		},
		Costs:    []Cost{{Resource: "money", Amount: ferryCost(n)}},
		Mishaps:  []ResourceRange{},
		TimeCost: 1,
	}
}

func (a ferry) Roll(n *world.Node, r *rng.RNG) Outcome {
	ride := normalize(n, rideYield, world.Range{Min: 1, Max: 3})
	rideGain := max(1, round(float64(ride.Min+ride.Max)/2))
	snacks := normalize(n, snackYield, world.Range{Min: 0, Max: 2})
	snackGain := 0
	if snacks.Max > 0 && r.NextFloat() < 0.7 {
		snackGain = r.NextInt(min(1, snacks.Max), snacks.Max)
	}
	cost := ferryCost(n)
	parts := []string{fmt.Sprintf("Paid $%d for the ferry", cost), fmt.Sprintf("ride +%d", rideGain)}
	if snackGain > 0 {
		parts = append(parts, fmt.Sprintf("restocked %d snacks", snackGain))
	}
	return Outcome{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Deltas:   Deltas{Snacks: snackGain, Ride: rideGain, Money: -cost},
		TimeCost: 1,
		Message:  message(parts),
	}
}

type shop struct{}

func (shop) ID() string          { return Shop }
func (shop) Title() string       { return "Shop" }
func (shop) Description() string { return "Visit shops and upgrade stands for supplies." }

func (a shop) Preview(n *world.Node) Preview {
	gas := normalize(n, gasYield, world.Range{Min: 1, Max: 4})
	snacks := normalize(n, snackYield, world.Range{Min: 1, Max: 4})
	return Preview{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Yields: []ResourceRange{
			{Resource: "gas", Min: gas.Min, Max: gas.Max},
			{Resource: "snacks", Min: snacks.Min, Max: snacks.Max},
		},
		Costs:    []Cost{{Resource: "money", Amount: shopCost(n)}},
		Mishaps:  []ResourceRange{},
		TimeCost: 1,
	}
}

func (a shop) Roll(n *world.Node, r *rng.RNG) Outcome {
	gas := pickInt(r, normalize(n, gasYield, world.Range{Min: 1, Max: 4}))
	snacks := pickInt(r, normalize(n, snackYield, world.Range{Min: 1, Max: 4}))
	cost := shopCost(n)
	return Outcome{
		ID: a.ID(), Title: a.Title(), Description: a.Description(),
		Deltas:   Deltas{Gas: gas, Snacks: snacks, Money: -cost},
		TimeCost: 1,
		Message: message([]string{
			fmt.Sprintf("Bought supplies for $%d", cost),
			fmt.Sprintf("gas +%d", gas),
			fmt.Sprintf("snacks +%d", snacks),
		}),
	}
}
