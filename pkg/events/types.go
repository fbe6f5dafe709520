// Package events runs encounters: multi-stage branching events triggered at
// gameplay hooks, selected by weighted draw and resolved into effects on a
// run.
package events

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

const (
	HookArrival = "arrival"
	HookTravel  = "travel"
)

// RarityWeights maps a rarity to its selection weight when an event has no
// explicit weight. Unknown rarities weigh 1.
var RarityWeights = map[string]float64{
	"common":   6,
	"uncommon": 3,
	"rare":     1,
}

// Library is the event content file.
type Library struct {
	Events []Event `json:"events"`
}

// Requirements gate whether an event may trigger. Zero values do not
// restrict anything.
type Requirements struct {
	MinDay      *int     `json:"minDay,omitempty"`
	MaxDay      *int     `json:"maxDay,omitempty"`
	Regions     []string `json:"regions,omitempty"`
	NotRegions  []string `json:"notRegions,omitempty"`
	Flags       []string `json:"flags,omitempty"`
	NotFlags    []string `json:"notFlags,omitempty"`
	ContextTags []string `json:"contextTags,omitempty"`
}

type Event struct {
	ID         string       `json:"id"`
	Title      string       `json:"title,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Hook       string       `json:"hook,omitempty"`
	Rarity     string       `json:"rarity,omitempty"`
	Weight     *float64     `json:"weight,omitempty"`
	Cooldown   int          `json:"cooldown,omitempty"`
	Requires   Requirements `json:"requires"`
	EntryStage string       `json:"entryStage,omitempty"`
	Stages     []Stage      `json:"stages"`

	stages map[string]*Stage
}

// weight is the selection weight, never negative.
func (e *Event) weight() float64 {
	if e.Weight != nil {
		return max(0, *e.Weight)
	}
	if w, ok := RarityWeights[e.Rarity]; ok {
		return w
	}
	return 1
}

// stage looks up a stage by id; an empty id means the entry stage.
func (e *Event) stage(id string) (*Stage, bool) {
	if id == "" {
		id = e.EntryStage
		if id == "" && len(e.Stages) > 0 {
			id = e.Stages[0].ID
		}
	}
	s, ok := e.stages[id]
	return s, ok
}

type Stage struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Text    string   `json:"text,omitempty"`
	Choices []Choice `json:"choices"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Stage) Clone() *Stage {
	if s == nil {
		return nil
	}
	c := *s
	c.Choices = make([]Choice, len(s.Choices))
	for i, ch := range s.Choices {
		c.Choices[i] = ch.clone()
	}
	return &c
}

func (s *Stage) choice(id string) (*Choice, bool) {
	for i := range s.Choices {
		if s.Choices[i].ID == id {
			return &s.Choices[i], true
		}
	}
	return nil, false
}

type Choice struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"`
	Outcome    string     `json:"outcome,omitempty"`
	Log        string     `json:"log,omitempty"`
	Effects    EffectList `json:"effects,omitempty"`
	Roll       *Roll      `json:"roll,omitempty"`
	SetFlags   FlagSet    `json:"setFlags,omitempty"`
	ClearFlags []string   `json:"clearFlags,omitempty"`
	NextStage  string     `json:"nextStage,omitempty"`
}

func (c Choice) clone() Choice {
	c.Effects = c.Effects.clone()
	c.SetFlags = slices.Clone(c.SetFlags)
	c.ClearFlags = slices.Clone(c.ClearFlags)
	if c.Roll != nil {
		r := *c.Roll
		r.Success = r.Success.clone()
		r.Failure = r.Failure.clone()
		c.Roll = &r
	}
	return c
}

// Roll splits a choice into success and failure branches on one draw.
// Chance defaults to 0.5.
type Roll struct {
	Chance  *float64 `json:"chance,omitempty"`
	Success *Branch  `json:"success,omitempty"`
	Failure *Branch  `json:"failure,omitempty"`
}

func (r *Roll) chance() float64 {
	if r.Chance == nil {
		return 0.5
	}
	return *r.Chance
}

type Branch struct {
	Outcome string     `json:"outcome,omitempty"`
	Effects EffectList `json:"effects,omitempty"`
}

func (b *Branch) clone() *Branch {
	if b == nil {
		return nil
	}
	c := *b
	c.Effects = b.Effects.clone()
	return &c
}

// FlagValue is one flag assignment.
type FlagValue struct {
	Flag  string
	Value bool
}

// FlagSet is a choice's setFlags. Content may write it as a list of flag
// names, all set true, or as an object of flag to value.
type FlagSet []FlagValue

func (f *FlagSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		out := make(FlagSet, 0, len(names))
		for _, n := range names {
			out = append(out, FlagValue{Flag: n, Value: true})
		}
		*f = out
		return nil
	}
	var values map[string]*bool
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("setFlags must be a list or an object: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(FlagSet, 0, len(keys))
	for _, k := range keys {
		v := true
		if values[k] != nil {
			v = *values[k]
		}
		out = append(out, FlagValue{Flag: k, Value: v})
	}
	*f = out
	return nil
}

func (f FlagSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, len(f))
	for _, v := range f {
		m[v.Flag] = v.Value
	}
	return json.Marshal(m)
}

// TriggerContext describes where a hook fired.
type TriggerContext struct {
	FromNodeID string   `json:"fromNodeId,omitempty"`
	ToNodeID   string   `json:"toNodeId,omitempty"`
	NodeID     string   `json:"nodeId,omitempty"`
	OriginID   string   `json:"originId,omitempty"`
	Region     string   `json:"region,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (c TriggerContext) clone() TriggerContext {
	c.Tags = slices.Clone(c.Tags)
	return c
}

// Trigger is a selected event opened at its entry stage.
type Trigger struct {
	ID      string         `json:"id"`
	Title   string         `json:"title,omitempty"`
	Hook    string         `json:"hook"`
	StageID string         `json:"stageId"`
	Stage   *Stage         `json:"stage"`
	Context TriggerContext `json:"context"`
}

// RollRecord is the draw a rolled choice made.
type RollRecord struct {
	Value   float64 `json:"value"`
	Success bool    `json:"success"`
}

// Resolution is the result of resolving one choice.
type Resolution struct {
	Outcome     string      `json:"outcome"`
	NextStageID string      `json:"nextStageId,omitempty"`
	NextStage   *Stage      `json:"nextStage,omitempty"`
	Done        bool        `json:"done"`
	Roll        *RollRecord `json:"roll,omitempty"`
}
