package events

import (
	"encoding/json"
	"testing"
)

func TestParseEffect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want EffectType
		noop bool
	}{
		{"resources", `{"type":"resources","changes":{"gas":1}}`, EffectResources, false},
		{"resources alias", `{"type":"resources","resources":{"gas":1}}`, EffectResources, false},
		{"days", `{"type":"days","amount":2}`, EffectDays, false},
		{"reveal hazards", `{"type":"revealHazards"}`, EffectRevealHazards, false},
		{"clear flag", `{"type":"clearFlag","flag":"x"}`, EffectClearFlag, false},
		{"teleport", `{"type":"teleport","mode":"forward"}`, EffectTeleport, false},
		{"unknown type", `{"type":"confetti"}`, "confetti", true},
		{"wrong shape", `{"type":"dayShift","days":"two"}`, EffectDayShift, true},
		{"not an object", `"resources"`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseEffect(json.RawMessage(tt.raw))
			if e.EffectType() != tt.want {
				t.Errorf("type = %q, want %q", e.EffectType(), tt.want)
			}
			if _, isNoop := e.(NoopEffect); isNoop != tt.noop {
				t.Errorf("noop = %v, want %v", isNoop, tt.noop)
			}
		})
	}
}

func TestResourcesEffectDeltas(t *testing.T) {
	e := ParseEffect(json.RawMessage(`{"type":"resources","resources":{"snacks":-2}}`)).(ResourcesEffect)
	if got := e.Deltas()["snacks"]; got != -2 {
		t.Errorf("snacks = %d, want -2", got)
	}
}

func TestEffectListMarshalsBack(t *testing.T) {
	var c Choice
	src := `{"id":"a","effects":[{"type":"log","message":"hi"},{"type":"mystery","x":1}],"setFlags":["f"]}`
	if err := json.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Choice
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if len(back.Effects) != 2 {
		t.Fatalf("effects = %d, want 2", len(back.Effects))
	}
	if back.Effects[1].EffectType() != "mystery" {
		t.Errorf("unknown effect not preserved: %q", back.Effects[1].EffectType())
	}
	if len(back.SetFlags) != 1 || back.SetFlags[0] != (FlagValue{Flag: "f", Value: true}) {
		t.Errorf("setFlags = %+v", back.SetFlags)
	}
}
