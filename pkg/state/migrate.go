package state

// Migrate upgrades a saved record to CurrentVersion in place, filling in
// every field older saves lack. It reports whether anything changed.
//
// Saves without a world descriptor predate procedural worlds and keep
// playing on the static graph.
func Migrate(s *State) bool {
	changed := false
	if s.Version < CurrentVersion {
		s.Version = CurrentVersion
		changed = true
	}
	if s.Day < 1 {
		s.Day = 1
		changed = true
	}
	if s.TimeSegment < 0 || s.TimeSegment >= SegmentsPerDay {
		s.TimeSegment = 0
		changed = true
	}
	if s.World == nil {
		s.World = &WorldDescriptor{Seed: s.Seed, Type: WorldLegacy}
		changed = true
	} else if s.World.Type == "" {
		s.World.Type = WorldProcedural
		changed = true
	}

	spec := VehicleByID(s.Vehicle.ID)
	if s.Vehicle.ID == "" {
		s.Vehicle = spec.Vehicle
		changed = true
	}
	if s.Vehicle.Efficiency <= 0 {
		s.Vehicle.Efficiency = spec.Efficiency
		changed = true
	}
	if s.MaxResources == nil {
		limit := spec.Stats
		limit.Gas = max(limit.Gas, s.Resources.Gas)
		limit.Snacks = max(limit.Snacks, s.Resources.Snacks)
		limit.Ride = max(limit.Ride, s.Resources.Ride)
		limit.Money = max(limit.Money, s.Resources.Money)
		s.MaxResources = &limit
		changed = true
	}

	if s.Visited == nil {
		s.Visited = []string{}
		changed = true
	}
	if s.Location != "" && !s.HasVisited(s.Location) {
		s.Visited = append(s.Visited, s.Location)
		changed = true
	}
	if s.Log == nil {
		s.Log = []string{}
		changed = true
	}
	if len(s.Log) > LogLimit {
		s.Log = append([]string(nil), s.Log[len(s.Log)-LogLimit:]...)
		changed = true
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
		changed = true
	}
	if s.Party == nil {
		s.Party = DefaultParty()
		changed = true
	}
	if s.ActionHistory == nil {
		s.ActionHistory = map[string]map[string]int{}
		changed = true
	}
	if s.Knowledge == nil {
		s.Knowledge = make(map[string]NodeKnowledge, len(s.Visited))
		for _, id := range s.Visited {
			s.Knowledge[id] = NodeKnowledge{Seen: true}
		}
		changed = true
	}
	if k := s.Knowledge[s.Location]; s.Location != "" && !k.Seen {
		k.Seen = true
		s.Knowledge[s.Location] = k
		changed = true
	}
	if s.Encounters == nil {
		s.Encounters = newEncounters()
		changed = true
	} else {
		if s.Encounters.Flags == nil {
			s.Encounters.Flags = map[string]bool{}
			changed = true
		}
		if s.Encounters.Cooldowns == nil {
			s.Encounters.Cooldowns = map[string]Cooldown{}
			changed = true
		}
		if s.Encounters.Buffs == nil {
			s.Encounters.Buffs = []Buff{}
			changed = true
		}
	}
	return changed
}
