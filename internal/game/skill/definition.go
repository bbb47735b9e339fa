package skill

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// EffectKind selects how an Effect changes its target.
type EffectKind int8

const (
	KindDamage EffectKind = iota
	KindHeal
	KindApplyBuff
	KindApplyDebuff
	KindRemoveBuff
)

var kindNames = [...]string{
	KindDamage:      "damage",
	KindHeal:        "heal",
	KindApplyBuff:   "apply_buff",
	KindApplyDebuff: "apply_debuff",
	KindRemoveBuff:  "remove_buff",
}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("EffectKind(%d)", int8(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EffectKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEffectKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseEffectKind maps a content name to an EffectKind.
func ParseEffectKind(s string) (EffectKind, error) {
	for i, name := range kindNames {
		if name == s {
			return EffectKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect kind %q", s)
}

// Formula computes an amount from the attacker and defender's effective stats.
type Formula func(attacker, defender *model.Unit) (decimal.Decimal, error)

// Condition gates an effect per target.
type Condition func(attacker, defender *model.Unit) bool

// Effect is one step applied to every selected target, in declared order.
type Effect struct {
	Kind      EffectKind
	Formula   Formula
	Condition Condition
	// BuffID and Duration are used by the buff kinds.
	BuffID   string
	Duration int
	// Probability of applying; 0 means always.
	Probability float64
}

// Definition is an immutable skill shared by every unit that has it.
type Definition struct {
	ID      string
	Name    string
	Targets Selector
	Pre     Action
	Effects []Effect
	Post    Action
}
