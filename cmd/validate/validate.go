package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/canadian-trail/pkg/actions"
	"github.com/jwebster45206/canadian-trail/pkg/events"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

const (
	kindEvents   = "event library"
	kindSkeleton = "world skeleton"
	kindLegacy   = "legacy graph"
)

var knownHooks = map[string]bool{
	events.HookArrival: true,
	events.HookTravel:  true,
}

type validator struct {
	errors []string
}

func (v *validator) addf(format string, args ...any) {
	v.errors = append(v.errors, "  - "+fmt.Sprintf(format, args...))
}

func validateFile(filename string) (string, error) {
	if !strings.HasSuffix(filename, ".json") {
		return "", fmt.Errorf("content file must have .json extension: %s", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	kind, err := validateBytes(data)
	if err != nil {
		return kind, fmt.Errorf("%s: %w", filename, err)
	}
	return kind, nil
}

// validateBytes detects the content kind from its top-level keys, decodes it
// strictly and checks cross references.
func validateBytes(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", fmt.Errorf("invalid JSON")
	}
	var head map[string]json.RawMessage
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("top level must be an object: %w", err)
	}

	v := &validator{}
	var kind string
	switch {
	case head["events"] != nil:
		kind = kindEvents
		var lib events.Library
		if err := strictDecode(data, &lib); err != nil {
			return kind, err
		}
		v.validateLibrary(&lib)
	case head["checkpoints"] != nil:
		kind = kindSkeleton
		var sk world.Skeleton
		if err := strictDecode(data, &sk); err != nil {
			return kind, err
		}
		v.validateSkeleton(&sk)
	case head["nodes"] != nil:
		kind = kindLegacy
		var lg world.LegacyData
		if err := strictDecode(data, &lg); err != nil {
			return kind, err
		}
		v.validateLegacy(&lg)
	default:
		return "", fmt.Errorf("unrecognized content: expected an events, checkpoints or nodes key")
	}

	if len(v.errors) > 0 {
		return kind, fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return kind, nil
}

func strictDecode(data []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}
	return nil
}

func stageID(s events.Stage, i int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("stage-%d", i)
}

func (v *validator) validateLibrary(lib *events.Library) {
	seen := map[string]bool{}
	for i, ev := range lib.Events {
		if ev.ID == "" {
			v.addf("events[%d] has no id", i)
			continue
		}
		if seen[ev.ID] {
			v.addf("duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = true
		if ev.Hook != "" && !knownHooks[ev.Hook] {
			v.addf("event %q has unknown hook %q", ev.ID, ev.Hook)
		}
		if _, ok := events.RarityWeights[ev.Rarity]; ev.Rarity != "" && !ok {
			v.addf("event %q has unknown rarity %q", ev.ID, ev.Rarity)
		}
		if len(ev.Stages) == 0 {
			v.addf("event %q has no stages", ev.ID)
			continue
		}

		stages := map[string]bool{}
		for j, s := range ev.Stages {
			id := stageID(s, j)
			if stages[id] {
				v.addf("event %q has duplicate stage id %q", ev.ID, id)
			}
			stages[id] = true
		}
		if ev.EntryStage != "" && !stages[ev.EntryStage] {
			v.addf("event %q entryStage %q does not exist", ev.ID, ev.EntryStage)
		}
		for j, s := range ev.Stages {
			sid := stageID(s, j)
			if len(s.Choices) == 0 {
				v.addf("event %q stage %q has no choices", ev.ID, sid)
			}
			for k, c := range s.Choices {
				where := fmt.Sprintf("event %q stage %q choice %d", ev.ID, sid, k)
				if c.NextStage != "" && !stages[c.NextStage] {
					v.addf("%s: nextStage %q does not exist", where, c.NextStage)
				}
				v.validateEffects(where, c.Effects)
				if c.Roll != nil {
					if c.Roll.Chance != nil && (*c.Roll.Chance < 0 || *c.Roll.Chance > 1) {
						v.addf("%s: roll chance %v outside [0, 1]", where, *c.Roll.Chance)
					}
					if c.Roll.Success != nil {
						v.validateEffects(where+" success", c.Roll.Success.Effects)
					}
					if c.Roll.Failure != nil {
						v.validateEffects(where+" failure", c.Roll.Failure.Effects)
					}
				}
			}
		}
	}
}

func (v *validator) validateEffects(where string, list events.EffectList) {
	for i, e := range list {
		if noop, ok := e.(events.NoopEffect); ok {
			if noop.Type == "" {
				v.addf("%s: effect %d is missing a type", where, i)
			} else {
				v.addf("%s: effect %d has unknown type or shape %q", where, i, noop.Type)
			}
		}
	}
}

func (v *validator) validateSkeleton(sk *world.Skeleton) {
	if err := sk.Validate(); err != nil {
		v.addf("%v", err)
		return
	}
	for _, cp := range sk.Checkpoints {
		if cp.Name == "" {
			v.addf("checkpoint %q has no name", cp.ID)
		}
		for _, a := range cp.Actions {
			if _, ok := actions.Get(a); !ok {
				v.addf("checkpoint %q has unknown action %q", cp.ID, a)
			}
		}
	}
}

func (v *validator) validateLegacy(lg *world.LegacyData) {
	ids := map[string]bool{}
	for i, n := range lg.Nodes {
		if n.ID == "" {
			v.addf("nodes[%d] has no id", i)
			continue
		}
		if ids[n.ID] {
			v.addf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	if lg.Start != "" && !ids[lg.Start] {
		v.addf("start node %q does not exist", lg.Start)
	}
	for _, n := range lg.Nodes {
		for _, l := range append(append([]world.LegacyLink{}, n.Connections...), n.Neighbors...) {
			if !ids[l.ID] {
				v.addf("node %q connects to missing node %q", n.ID, l.ID)
			}
		}
		for _, a := range n.Actions {
			if _, ok := actions.Get(a); !ok {
				v.addf("node %q has unknown action %q", n.ID, a)
			}
		}
	}
	if len(v.errors) == 0 {
		if _, err := world.FromLegacy(lg); err != nil {
			v.addf("%v", err)
		}
	}
}
