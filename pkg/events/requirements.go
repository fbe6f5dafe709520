package events

import (
	"context"
	"slices"
)

func needsRegion(events []*Event) bool {
	for _, ev := range events {
		if len(ev.Requires.Regions) > 0 || len(ev.Requires.NotRegions) > 0 {
			return true
		}
	}
	return false
}

// resolveRegion finds the region a hook fired in: the context's region, then
// the region of its node, its destination and finally the current location.
func resolveRegion(ctx context.Context, run Run, tc TriggerContext) (string, error) {
	if tc.Region != "" {
		return tc.Region, nil
	}
	graph, err := run.EnsureWorld(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range []string{tc.NodeID, tc.ToNodeID, run.Location()} {
		if id == "" {
			continue
		}
		if n, ok := graph.Node(id); ok {
			return n.Region, nil
		}
	}
	return "", nil
}

// passes reports whether ev may trigger now. A cooldown of N days blocks the
// event until N days after it last fired; 0 means no cooldown.
func passes(ev *Event, run Run, tc TriggerContext, region string) bool {
	day := run.Day()
	if ev.Cooldown > 0 {
		if last, ok := run.EncounterCooldown(ev.ID); ok {
			elapsed := day - last.Day
			if elapsed >= 0 && elapsed < ev.Cooldown {
				return false
			}
		}
	}
	req := ev.Requires
	if req.MinDay != nil && day < *req.MinDay {
		return false
	}
	if req.MaxDay != nil && day > *req.MaxDay {
		return false
	}
	if len(req.Regions) > 0 && (region == "" || !slices.Contains(req.Regions, region)) {
		return false
	}
	if len(req.NotRegions) > 0 && region != "" && slices.Contains(req.NotRegions, region) {
		return false
	}
	for _, f := range req.Flags {
		if !run.HasEncounterFlag(f) {
			return false
		}
	}
	for _, f := range req.NotFlags {
		if run.HasEncounterFlag(f) {
			return false
		}
	}
	for _, tag := range req.ContextTags {
		if !slices.Contains(tc.Tags, tag) {
			return false
		}
	}
	return true
}

// pickWeighted draws one value in [0, total) and walks the events in order,
// subtracting weights until the remainder reaches zero. No draw is made when
// nothing has weight.
func pickWeighted(ctx context.Context, run Run, events []*Event) (*Event, error) {
	total := 0.0
	for _, ev := range events {
		total += ev.weight()
	}
	if total <= 0 {
		return nil, nil
	}
	threshold, err := run.NextRange(ctx, 0, total)
	if err != nil {
		return nil, err
	}
	var last *Event
	for _, ev := range events {
		w := ev.weight()
		if w <= 0 {
			continue
		}
		last = ev
		threshold -= w
		if threshold <= 0 {
			return ev, nil
		}
	}
	return last, nil
}
