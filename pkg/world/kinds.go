package world

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jwebster45206/canadian-trail/pkg/rng"
)

type span [2]float64

type kindTemplate struct {
	actions     []string
	baseYields  [4]span // gas, snacks, ride, money
	abundance   span
	prosperity  span
	maintenance span
	hazard      span
	roughness   span
	services    Services
	shopCost    *span
	ferryCost   *span
}

var kindLibrary = map[Kind]kindTemplate{
	KindCheckpoint: {
		actions:     []string{"shop", "tinker"},
		baseYields:  [4]span{{2, 5}, {2, 6}, {2, 4}, {2, 5}},
		abundance:   span{0.5, 0.75},
		prosperity:  span{0.55, 0.8},
		maintenance: span{0.6, 0.9},
		hazard:      span{0.08, 0.18},
		roughness:   span{0.9, 1.05},
		services:    Services{Mechanic: true, Shop: true},
		shopCost:    &span{3, 5},
	},
	KindGas: {
		actions:     []string{"siphon", "scavenge"},
		baseYields:  [4]span{{2, 6}, {0, 2}, {0, 2}, {1, 4}},
		abundance:   span{0.45, 0.85},
		prosperity:  span{0.2, 0.5},
		maintenance: span{0.25, 0.45},
		hazard:      span{0.15, 0.32},
		roughness:   span{0.95, 1.15},
	},
	KindForest: {
		actions:     []string{"forage", "scavenge"},
		baseYields:  [4]span{{0, 2}, {2, 6}, {1, 3}, {0, 2}},
		abundance:   span{0.5, 0.9},
		prosperity:  span{0.1, 0.4},
		maintenance: span{0.35, 0.55},
		hazard:      span{0.18, 0.42},
		roughness:   span{1.05, 1.3},
	},
	KindMechanic: {
		actions:     []string{"tinker", "scavenge"},
		baseYields:  [4]span{{0, 3}, {0, 3}, {2, 6}, {1, 3}},
		abundance:   span{0.3, 0.55},
		prosperity:  span{0.35, 0.6},
		maintenance: span{0.65, 0.95},
		hazard:      span{0.12, 0.28},
		roughness:   span{0.95, 1.2},
		services:    Services{Mechanic: true},
		shopCost:    &span{3, 5},
	},
	KindTown: {
		actions:     []string{"shop", "tinker"},
		baseYields:  [4]span{{1, 5}, {2, 6}, {1, 3}, {2, 6}},
		abundance:   span{0.45, 0.7},
		prosperity:  span{0.4, 0.8},
		maintenance: span{0.45, 0.7},
		hazard:      span{0.08, 0.22},
		roughness:   span{0.9, 1.1},
		services:    Services{Mechanic: true, Shop: true},
		shopCost:    &span{3, 6},
	},
	KindFerry: {
		actions:     []string{"ferry", "shop"},
		baseYields:  [4]span{{0, 2}, {1, 4}, {2, 5}, {1, 3}},
		abundance:   span{0.35, 0.6},
		prosperity:  span{0.45, 0.75},
		maintenance: span{0.55, 0.8},
		hazard:      span{0.05, 0.18},
		roughness:   span{0.85, 1.05},
		services:    Services{Ferry: true, Shop: true},
		ferryCost:   &span{3, 6},
		shopCost:    &span{3, 5},
	},
	KindGhost: {
		actions:     []string{"scavenge", "siphon"},
		baseYields:  [4]span{{1, 5}, {0, 2}, {0, 2}, {1, 4}},
		abundance:   span{0.25, 0.55},
		prosperity:  span{0.1, 0.35},
		maintenance: span{0.2, 0.45},
		hazard:      span{0.35, 0.75},
		roughness:   span{1.1, 1.45},
	},
	KindVista: {
		actions:     []string{"forage", "scavenge"},
		baseYields:  [4]span{{0, 2}, {1, 4}, {1, 4}, {0, 3}},
		abundance:   span{0.35, 0.65},
		prosperity:  span{0.25, 0.55},
		maintenance: span{0.45, 0.75},
		hazard:      span{0.1, 0.32},
		roughness:   span{0.9, 1.2},
	},
}

type nameParts struct {
	prefixes []string
	suffixes []string
}

var kindNames = map[Kind]nameParts{
	KindGas: {
		prefixes: []string{"Prairie", "Twin Pines", "Maple Leaf", "Aurora", "Polar", "Sundog", "Blueberry", "Totem"},
		suffixes: []string{"Fuel Stop", "Gas Co-op", "Service", "Pump Row", "Fuel Depot", "Roadhouse"},
	},
	KindForest: {
		prefixes: []string{"Whispering", "Moosejaw", "Snowberry", "Birch Ridge", "Skyline", "Trout Lake", "Cedar Grove", "Windrift"},
		suffixes: []string{"Backcountry", "Provincial Park", "Trailhead", "Woodlot", "Bog", "Reserve"},
	},
	KindMechanic: {
		prefixes: []string{"Rusty", "Frontier", "High Gear", "Prairie", "Snowcap", "True North", "Frostbite"},
		suffixes: []string{"Garage", "Repair Yard", "Workshop", "Tune-Up", "Motor Shed", "Pit Stop"},
	},
	KindTown: {
		prefixes: []string{"Friendly", "Summit", "Maple Ridge", "Twin Lakes", "Aurora", "Canyon", "Prairie Light"},
		suffixes: []string{"Trading Post", "Township", "Market", "Crossing", "Village", "Harbour"},
	},
	KindFerry: {
		prefixes: []string{"Silver", "Lakeline", "Twin Current", "North Star", "Baylight", "Cedar", "Salish"},
		suffixes: []string{"Ferry", "Crossing", "Passage", "Pontoon", "Causeway", "Jetty"},
	},
	KindGhost: {
		prefixes: []string{"Abandoned", "Fog Hollow", "Stormcell", "Rusted", "Coyote", "Shadow", "Grim Cedar"},
		suffixes: []string{"Service Road", "Ghost Town", "Rest Stop", "Storm Cell", "Empty Lot", "Drift"},
	},
	KindVista: {
		prefixes: []string{"Sunset", "Aurora", "Eagle Eye", "Skyline", "Prairie Light", "Glacial", "Rainshadow"},
		suffixes: []string{"Vista", "Lookout", "Rest", "Scenic Pullout", "Overlook", "Summit"},
	},
}

var segmentKinds = []Kind{
	KindForest, KindGas, KindTown, KindMechanic, KindForest, KindVista,
	KindGhost, KindGas, KindFerry, KindForest, KindTown,
}

var branchKinds = []Kind{KindGhost, KindVista, KindGas, KindForest, KindGhost, KindFerry}

func template(kind Kind) kindTemplate {
	if t, ok := kindLibrary[kind]; ok {
		return t
	}
	return kindLibrary[KindForest]
}

// DefaultActions returns the actions a node of the given kind offers.
func DefaultActions(kind Kind) []string {
	return append([]string(nil), template(kind).actions...)
}

func scaleRange(base span, factor float64) Range {
	minBase, maxBase := base[0], base[1]
	min := int(max(0, round(lerp(minBase, (minBase+maxBase)/2, factor*0.6))))
	width := max(0, maxBase-minBase)
	projected := minBase + width*(0.4+factor*0.6)
	return Range{Min: min, Max: max(min, int(round(projected)))}
}

// buildProfile draws abundance, prosperity, maintenance, hazard and
// roughness in that order.
func buildProfile(kind Kind, r *rng.RNG) *Profile {
	t := template(kind)
	p := &Profile{
		Abundance:   r.NextRange(t.abundance[0], t.abundance[1]),
		Prosperity:  r.NextRange(t.prosperity[0], t.prosperity[1]),
		Maintenance: r.NextRange(t.maintenance[0], t.maintenance[1]),
		Hazard:      r.NextRange(t.hazard[0], t.hazard[1]),
		Roughness:   r.NextRange(t.roughness[0], t.roughness[1]),
		Services:    t.services,
	}
	p.Yields = Yields{
		Gas:    scaleRange(t.baseYields[0], p.Abundance),
		Snacks: scaleRange(t.baseYields[1], p.Abundance),
		Ride:   scaleRange(t.baseYields[2], p.Maintenance),
		Money:  scaleRange(t.baseYields[3], p.Prosperity),
	}
	if p.Services.Shop {
		cost := span{3, 6}
		if t.shopCost != nil {
			cost = *t.shopCost
		}
		p.Services.ShopCost = Cost(lerp(cost[0], cost[1], p.Prosperity))
	}
	if p.Services.Ferry {
		cost := span{3, 6}
		if t.ferryCost != nil {
			cost = *t.ferryCost
		}
		p.Services.FerryCost = Cost(lerp(cost[0], cost[1], p.Prosperity))
	}
	return p
}

// buildName draws a prefix then a suffix. Kinds without name parts get a
// generic waypoint name and consume no draws.
func buildName(kind Kind, r *rng.RNG) string {
	parts, ok := kindNames[kind]
	if !ok {
		return fmt.Sprintf("%s waypoint", kind.Label())
	}
	prefix := parts.prefixes[r.NextInt(0, len(parts.prefixes)-1)]
	suffix := parts.suffixes[r.NextInt(0, len(parts.suffixes)-1)]
	return prefix + " " + suffix
}

// ShortName abbreviates a display name to fit map labels.
func ShortName(name string) string {
	if utf8.RuneCountInString(name) <= 16 {
		return name
	}
	parts := strings.Split(name, " ")
	if len(parts) == 1 {
		return truncate(parts[0], 14)
	}
	candidate := parts[0] + " " + parts[1]
	if utf8.RuneCountInString(candidate) <= 16 {
		return candidate
	}
	return strings.TrimSpace(parts[0] + " " + truncate(parts[len(parts)-1], 6))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
