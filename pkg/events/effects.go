package events

import (
	"encoding/json"
	"maps"
	"slices"
)

type EffectType string

const (
	EffectResources       EffectType = "resources"
	EffectLog             EffectType = "log"
	EffectDayShift        EffectType = "dayShift"
	EffectDays            EffectType = "days"
	EffectRevealNeighbors EffectType = "revealNeighbors"
	EffectRevealHazards   EffectType = "revealHazards"
	EffectSetFlag         EffectType = "setFlag"
	EffectClearFlag       EffectType = "clearFlag"
	EffectAddBuff         EffectType = "addBuff"
	EffectClearBuff       EffectType = "clearBuff"
	EffectTeleport        EffectType = "teleport"
)

// Effect is one entry of a choice's effect list. The set of implementations
// is closed; anything content declares that cannot be parsed becomes a
// NoopEffect.
type Effect interface {
	EffectType() EffectType
	clone() Effect
}

type ResourcesEffect struct {
	Type      EffectType     `json:"type"`
	Changes   map[string]int `json:"changes,omitempty"`
	Resources map[string]int `json:"resources,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Deltas returns the resource changes, accepting either field name.
func (e ResourcesEffect) Deltas() map[string]int {
	if e.Changes != nil {
		return e.Changes
	}
	return e.Resources
}

type LogEffect struct {
	Type    EffectType `json:"type"`
	Message string     `json:"message,omitempty"`
}

// DayShiftEffect moves the calendar by Days (or Amount) whole days.
type DayShiftEffect struct {
	Type    EffectType `json:"type"`
	Days    *int       `json:"days,omitempty"`
	Amount  *int       `json:"amount,omitempty"`
	Message string     `json:"message,omitempty"`
}

func (e DayShiftEffect) Delta() int {
	if e.Days != nil {
		return *e.Days
	}
	if e.Amount != nil {
		return *e.Amount
	}
	return 0
}

// RevealEffect covers revealNeighbors and revealHazards. revealHazards
// always records hazard hints and ignores MaxHazard.
type RevealEffect struct {
	Type        EffectType `json:"type"`
	Target      string     `json:"target,omitempty"`
	HazardHints bool       `json:"hazardHints,omitempty"`
	MaxHazard   *float64   `json:"maxHazard,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// FlagEffect covers setFlag and clearFlag. Value defaults to true.
type FlagEffect struct {
	Type    EffectType `json:"type"`
	Flag    string     `json:"flag"`
	Value   *bool      `json:"value,omitempty"`
	Message string     `json:"message,omitempty"`
}

type AddBuffEffect struct {
	Type      EffectType     `json:"type"`
	ID        string         `json:"id,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Amount    *float64       `json:"amount,omitempty"`
	Value     *float64       `json:"value,omitempty"`
	Remaining *int           `json:"remaining,omitempty"`
	Duration  *int           `json:"duration,omitempty"`
	Tick      string         `json:"tick,omitempty"`
	Label     string         `json:"label,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Message   string         `json:"message,omitempty"`
}

type ClearBuffEffect struct {
	Type    EffectType `json:"type"`
	ID      string     `json:"id,omitempty"`
	Kind    string     `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
}

// TeleportEffect moves the party. TargetID wins; otherwise Mode "forward"
// picks the farthest unvisited neighbor of Origin, Mode "random" or an empty
// Target picks a random neighbor, and any other Target is resolved like a
// reveal target.
type TeleportEffect struct {
	Type            EffectType `json:"type"`
	TargetID        string     `json:"targetId,omitempty"`
	Target          string     `json:"target,omitempty"`
	Origin          string     `json:"origin,omitempty"`
	Mode            string     `json:"mode,omitempty"`
	DayShift        int        `json:"dayShift,omitempty"`
	Log             string     `json:"log,omitempty"`
	RevealNeighbors bool       `json:"revealNeighbors,omitempty"`
	HazardHints     bool       `json:"hazardHints,omitempty"`
	Message         string     `json:"message,omitempty"`
}

// NoopEffect stands in for an effect of unknown type or malformed shape.
// Applying it does nothing.
type NoopEffect struct {
	Type EffectType      `json:"type,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

func (e NoopEffect) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return []byte("null"), nil
}

func (e ResourcesEffect) EffectType() EffectType { return e.Type }
func (e LogEffect) EffectType() EffectType       { return e.Type }
func (e DayShiftEffect) EffectType() EffectType  { return e.Type }
func (e RevealEffect) EffectType() EffectType    { return e.Type }
func (e FlagEffect) EffectType() EffectType      { return e.Type }
func (e AddBuffEffect) EffectType() EffectType   { return e.Type }
func (e ClearBuffEffect) EffectType() EffectType { return e.Type }
func (e TeleportEffect) EffectType() EffectType  { return e.Type }
func (e NoopEffect) EffectType() EffectType      { return e.Type }

func (e ResourcesEffect) clone() Effect {
	e.Changes = maps.Clone(e.Changes)
	e.Resources = maps.Clone(e.Resources)
	return e
}
func (e LogEffect) clone() Effect      { return e }
func (e DayShiftEffect) clone() Effect { return e }
func (e RevealEffect) clone() Effect   { return e }
func (e FlagEffect) clone() Effect     { return e }
func (e AddBuffEffect) clone() Effect {
	e.Meta = maps.Clone(e.Meta)
	return e
}
func (e ClearBuffEffect) clone() Effect { return e }
func (e TeleportEffect) clone() Effect  { return e }
func (e NoopEffect) clone() Effect {
	e.Raw = slices.Clone(e.Raw)
	return e
}

// ParseEffect decodes one effect entry. It never fails: entries that are
// not objects, have an unknown type, or do not match their type's shape
// come back as a NoopEffect.
func ParseEffect(raw json.RawMessage) Effect {
	var head struct {
		Type EffectType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return NoopEffect{Raw: raw}
	}
	var (
		e   Effect
		err error
	)
	switch head.Type {
	case EffectResources:
		e, err = decode[ResourcesEffect](raw)
	case EffectLog:
		e, err = decode[LogEffect](raw)
	case EffectDayShift, EffectDays:
		e, err = decode[DayShiftEffect](raw)
	case EffectRevealNeighbors, EffectRevealHazards:
		e, err = decode[RevealEffect](raw)
	case EffectSetFlag, EffectClearFlag:
		e, err = decode[FlagEffect](raw)
	case EffectAddBuff:
		e, err = decode[AddBuffEffect](raw)
	case EffectClearBuff:
		e, err = decode[ClearBuffEffect](raw)
	case EffectTeleport:
		e, err = decode[TeleportEffect](raw)
	default:
		return NoopEffect{Type: head.Type, Raw: raw}
	}
	if err != nil {
		return NoopEffect{Type: head.Type, Raw: raw}
	}
	return e
}

func decode[T Effect](raw json.RawMessage) (Effect, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EffectList decodes each entry independently so one malformed effect does
// not reject the whole list.
type EffectList []Effect

func (l *EffectList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		// Not a list at all; treat as no effects.
		*l = nil
		return nil
	}
	out := make(EffectList, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ParseEffect(slices.Clone(raw)))
	}
	*l = out
	return nil
}

func (l EffectList) clone() EffectList {
	if l == nil {
		return nil
	}
	out := make(EffectList, len(l))
	for i, e := range l {
		out[i] = e.clone()
	}
	return out
}
