package buff

import (
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// HPScaledCut reduces incoming damage by a rate that grows as the owner's
// health drops: maxCut at 0% health, minCut at 100%, linear in between and
// clamped to [minCut, maxCut]. On apply it records a shield value of
// shieldStat × shieldMultiplier on the instance.
//
// Params: "min_cut" (default 0.30), "max_cut" (default 0.60),
// "shield_stat" (default max_mp), "shield_multiplier" (default 0).
type HPScaledCut struct {
	Base
	statMods

	minCut     decimal.Decimal
	maxCut     decimal.Decimal
	shieldStat model.StatKey
	shieldMul  decimal.Decimal
}

func NewHPScaledCut(spec Spec) (model.BuffDefinition, error) {
	minCut, err := paramDecimal(spec.Params, "min_cut", "0.30")
	if err != nil {
		return nil, err
	}
	maxCut, err := paramDecimal(spec.Params, "max_cut", "0.60")
	if err != nil {
		return nil, err
	}
	shieldMul, err := paramDecimal(spec.Params, "shield_multiplier", "0")
	if err != nil {
		return nil, err
	}
	stat := model.StatMaxMP
	if s := spec.Params["shield_stat"]; s != "" {
		stat = model.StatKey(s)
	}
	return &HPScaledCut{
		Base:       spec.Base,
		statMods:   statMods{mods: spec.Stats},
		minCut:     minCut,
		maxCut:     maxCut,
		shieldStat: stat,
		shieldMul:  shieldMul,
	}, nil
}

func (c *HPScaledCut) OnApplied(hc *model.HookContext, duration int) error {
	if c.shieldMul.IsZero() {
		return nil
	}
	shield := hc.Owner.EffectiveStat(c.shieldStat).Mul(c.shieldMul)
	hc.Instance.Value = shield
	hc.Logf("%s raises %s: shield %s for %d turns", hc.Owner.Name(), c.Name(), shield.Floor(), duration)
	return nil
}

// CutRate returns the reduction rate for the owner's current health.
func (c *HPScaledCut) CutRate(owner *model.Unit) decimal.Decimal {
	span := c.maxCut.Sub(c.minCut)
	rate := c.maxCut.Sub(owner.HPRatio().Mul(span))
	return decimal.Min(decimal.Max(rate, c.minCut), c.maxCut)
}

func (c *HPScaledCut) ModifyDamageTaken(hc *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	rate := c.CutRate(hc.Owner)
	return damage.Mul(decimal.NewFromInt(1).Sub(rate)), nil
}
