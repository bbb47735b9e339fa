package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StatKey identifies one entry of a StatBlock.
type StatKey string

// Primary stats. Every unit carries all of them.
const (
	StatHP           StatKey = "hp"
	StatMaxHP        StatKey = "max_hp"
	StatMP           StatKey = "mp"
	StatMaxMP        StatKey = "max_mp"
	StatStrength     StatKey = "strength"
	StatAgility      StatKey = "agility"
	StatIntelligence StatKey = "intelligence"
	StatStamina      StatKey = "stamina"
	StatAttackMin    StatKey = "attack_min"
	StatAttackMax    StatKey = "attack_max"
	StatDefense      StatKey = "defense"
	StatCritRate     StatKey = "crit_rate"
)

// Secondary stats. Content usually leaves them at zero and lets buffs raise them.
const (
	StatDamageReflection StatKey = "damage_reflection"
	StatStatusResistance StatKey = "status_resistance"
)

// StatKeys lists every key a StatBlock must contain, in canonical order.
var StatKeys = []StatKey{
	StatHP, StatMaxHP, StatMP, StatMaxMP,
	StatStrength, StatAgility, StatIntelligence, StatStamina,
	StatAttackMin, StatAttackMax, StatDefense, StatCritRate,
	StatDamageReflection, StatStatusResistance,
}

// SecondaryStatKeys lists the keys a content loader may default to zero.
var SecondaryStatKeys = []StatKey{StatDamageReflection, StatStatusResistance}

// IsValid reports whether k is one of StatKeys.
func (k StatKey) IsValid() bool {
	for _, known := range StatKeys {
		if k == known {
			return true
		}
	}
	return false
}

// StatBlock is an immutable mapping from every StatKey to a value.
// The zero StatBlock is invalid; build one with NewStatBlock.
type StatBlock struct {
	values map[StatKey]decimal.Decimal
}

// NewStatBlock validates values and returns a StatBlock owning a copy of them.
// A missing or unknown key is a ConfigError.
func NewStatBlock(values map[StatKey]decimal.Decimal) (StatBlock, error) {
	for k := range values {
		if !k.IsValid() {
			return StatBlock{}, &ConfigError{Field: string(k), Err: fmt.Errorf("unknown stat key %q", k)}
		}
	}
	own := make(map[StatKey]decimal.Decimal, len(StatKeys))
	for _, k := range StatKeys {
		v, ok := values[k]
		if !ok {
			return StatBlock{}, &ConfigError{Field: string(k), Err: ErrMissingStat}
		}
		own[k] = v
	}
	return StatBlock{values: own}, nil
}

// Get returns the value stored for k.
func (s StatBlock) Get(k StatKey) decimal.Decimal {
	return s.values[k]
}

// Complete reports whether the block holds every key.
func (s StatBlock) Complete() bool {
	if len(s.values) != len(StatKeys) {
		return false
	}
	for _, k := range StatKeys {
		if _, ok := s.values[k]; !ok {
			return false
		}
	}
	return true
}

// With returns a new block with k replaced by v. The receiver is unchanged.
func (s StatBlock) With(k StatKey, v decimal.Decimal) StatBlock {
	own := make(map[StatKey]decimal.Decimal, len(s.values))
	for key, val := range s.values {
		own[key] = val
	}
	own[k] = v
	return StatBlock{values: own}
}

// StatModType defines how a stat modifier is folded into a base value.
type StatModType int8

const (
	StatModPercent StatModType = iota // fraction of base, e.g. 0.6 for +60%
	StatModFlat                       // absolute delta applied after percentages
)

func (t StatModType) String() string {
	switch t {
	case StatModPercent:
		return "percent"
	case StatModFlat:
		return "flat"
	default:
		return fmt.Sprintf("StatModType(%d)", int8(t))
	}
}

// StatMod is a single stat contribution supplied by a buff.
type StatMod struct {
	Stat  StatKey
	Type  StatModType
	Value decimal.Decimal
}

// FoldStat applies mods to base: percentages for the key are summed, applied
// once, and flat deltas are added afterwards.
func FoldStat(base decimal.Decimal, key StatKey, mods []StatMod) decimal.Decimal {
	pct := decimal.Zero
	flat := decimal.Zero
	for _, m := range mods {
		if m.Stat != key {
			continue
		}
		switch m.Type {
		case StatModPercent:
			pct = pct.Add(m.Value)
		case StatModFlat:
			flat = flat.Add(m.Value)
		}
	}
	return base.Mul(decimal.NewFromInt(1).Add(pct)).Add(flat)
}
