package buff

import (
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// DamageTakenScale multiplies incoming damage.
// Params: "multiplier" (decimal, default 1).
type DamageTakenScale struct {
	Base
	statMods
	multiplier decimal.Decimal
}

func NewDamageTakenScale(spec Spec) (model.BuffDefinition, error) {
	m, err := paramDecimal(spec.Params, "multiplier", "1")
	if err != nil {
		return nil, err
	}
	return &DamageTakenScale{Base: spec.Base, statMods: statMods{mods: spec.Stats}, multiplier: m}, nil
}

func (s *DamageTakenScale) ModifyDamageTaken(_ *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	return damage.Mul(s.multiplier), nil
}

// DamageDealtScale multiplies outgoing damage.
// Params: "multiplier" (decimal, default 1).
type DamageDealtScale struct {
	Base
	statMods
	multiplier decimal.Decimal
}

func NewDamageDealtScale(spec Spec) (model.BuffDefinition, error) {
	m, err := paramDecimal(spec.Params, "multiplier", "1")
	if err != nil {
		return nil, err
	}
	return &DamageDealtScale{Base: spec.Base, statMods: statMods{mods: spec.Stats}, multiplier: m}, nil
}

func (s *DamageDealtScale) ModifyDamageDealt(_ *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	return damage.Mul(s.multiplier), nil
}
