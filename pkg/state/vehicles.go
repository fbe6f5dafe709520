package state

// VehicleSpec is a selectable vehicle and the resources it starts with.
type VehicleSpec struct {
	Vehicle
	Stats Resources
}

var vehicleCatalog = []VehicleSpec{
	{
		Vehicle: Vehicle{
			ID:          "minivan",
			Name:        "Prairie Minivan",
			Description: "Balanced and comfortable. Plenty of cup holders and a trusty VHS player.",
			Traits:      []string{"Balanced consumption", "Family-friendly"},
			Efficiency:  1.0,
		},
		Stats: Resources{Gas: 8, Snacks: 6, Ride: 7, Money: 60},
	},
	{
		Vehicle: Vehicle{
			ID:          "pickup",
			Name:        "Northern Pickup",
			Description: "Rugged and ready for rough gravel. A little thirsty on fuel.",
			Traits:      []string{"Heavy-duty suspension", "Extra gear rack"},
			Efficiency:  1.15,
		},
		Stats: Resources{Gas: 7, Snacks: 5, Ride: 9, Money: 40},
	},
	{
		Vehicle: Vehicle{
			ID:          "schoolbus",
			Name:        "Retro School Bus",
			Description: "Converted bus with bunks. Slow, but everyone gets elbow room.",
			Traits:      []string{"Huge snack pantry", "Neighborhood legend"},
			Efficiency:  1.25,
		},
		Stats: Resources{Gas: 6, Snacks: 9, Ride: 8, Money: 80},
	},
}

// Vehicles returns the vehicle catalog.
func Vehicles() []VehicleSpec {
	out := make([]VehicleSpec, len(vehicleCatalog))
	copy(out, vehicleCatalog)
	for i := range out {
		out[i].Traits = append([]string(nil), out[i].Traits...)
	}
	return out
}

// VehicleByID looks up a vehicle, falling back to the first entry.
func VehicleByID(id string) VehicleSpec {
	all := Vehicles()
	for _, v := range all {
		if v.ID == id {
			return v
		}
	}
	return all[0]
}

func intPtr(v int) *int { return &v }

// DefaultParty returns the family that sets out on every new run.
func DefaultParty() []PartyMember {
	return []PartyMember{
		{Name: "Merri-Ellen", Role: "Trip captain", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "mom"}},
		{Name: "Mike", Role: "Wheelman", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "dad"}},
		{Name: "Ros", Role: "Trail spotter", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "daughter", Age: intPtr(9)}},
		{Name: "Jess", Role: "Snack scout", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "daughter", Age: intPtr(6)}},
		{Name: "Martha", Role: "Morale booster", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "daughter", Age: intPtr(3)}},
		{Name: "Rusty", Role: "Naptime mascot", Health: 5, Status: "Ready", Profile: MemberProfile{FamilyRole: "son", Age: intPtr(0)}},
	}
}
