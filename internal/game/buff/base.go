// Package buff provides parametric buff definitions and the kind registry
// that builds them from content data.
package buff

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Traits are the flags shared by every buff definition.
type Traits struct {
	Sacred    bool
	Removable bool
	Debuff    bool
}

// Base implements model.BuffDefinition and is embedded by every kind.
type Base struct {
	id     string
	name   string
	traits Traits
}

// NewBase returns the record part of a definition.
func NewBase(id, name string, t Traits) Base {
	if name == "" {
		name = id
	}
	return Base{id: id, name: name, traits: t}
}

func (b Base) ID() string        { return b.id }
func (b Base) Name() string      { return b.name }
func (b Base) IsSacred() bool    { return b.traits.Sacred }
func (b Base) IsRemovable() bool { return b.traits.Removable }
func (b Base) IsDebuff() bool    { return b.traits.Debuff }

// statMods supplies StatMods for kinds that carry static stat modifiers.
// With perTurn set every value is multiplied by the remaining duration.
type statMods struct {
	mods    []model.StatMod
	perTurn bool
}

func (s statMods) StatMods(_ *model.Unit, duration int) []model.StatMod {
	if !s.perTurn {
		return s.mods
	}
	scale := decimal.NewFromInt(int64(duration))
	out := make([]model.StatMod, len(s.mods))
	for i, m := range s.mods {
		m.Value = m.Value.Mul(scale)
		out[i] = m
	}
	return out
}

// statAliases expands content shorthands into concrete stat keys.
var statAliases = map[string][]model.StatKey{
	"attack":    {model.StatAttackMin, model.StatAttackMax},
	"all_stats": {model.StatStrength, model.StatAgility, model.StatIntelligence, model.StatStamina},
}

// ExpandStat resolves a stat name or alias into stat keys.
func ExpandStat(name string) ([]model.StatKey, error) {
	if keys, ok := statAliases[name]; ok {
		return keys, nil
	}
	k := model.StatKey(name)
	if !k.IsValid() {
		return nil, fmt.Errorf("unknown stat %q", name)
	}
	return []model.StatKey{k}, nil
}

func paramDecimal(params map[string]string, key, def string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		raw = def
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}

func paramFloat(params map[string]string, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}

func paramInt(params map[string]string, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}

func paramBool(params map[string]string, key string, def bool) (bool, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}
