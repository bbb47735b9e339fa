package buff

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Guard scales incoming damage and reacts to hits: it reflects
// damage_reflection × applied damage to the attacker and, with
// counterChance, applies counterDebuff to the attacker.
//
// Params: "multiplier" (default 1), "counter_chance" (default 0),
// "counter_debuff" (buff id), "counter_duration" (default 1).
type Guard struct {
	Base
	statMods

	multiplier      decimal.Decimal
	counterChance   float64
	counterDebuff   string
	counterDuration int
}

func NewGuard(spec Spec) (model.BuffDefinition, error) {
	m, err := paramDecimal(spec.Params, "multiplier", "1")
	if err != nil {
		return nil, err
	}
	chance, err := paramFloat(spec.Params, "counter_chance", 0)
	if err != nil {
		return nil, err
	}
	dur, err := paramInt(spec.Params, "counter_duration", 1)
	if err != nil {
		return nil, err
	}
	if chance > 0 && spec.Params["counter_debuff"] == "" {
		return nil, errors.New("counter_chance set without counter_debuff")
	}
	return &Guard{
		Base:            spec.Base,
		statMods:        statMods{mods: spec.Stats},
		multiplier:      m,
		counterChance:   chance,
		counterDebuff:   spec.Params["counter_debuff"],
		counterDuration: dur,
	}, nil
}

func (g *Guard) ModifyDamageTaken(_ *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	return damage.Mul(g.multiplier), nil
}

func (g *Guard) OnHitReceived(hc *model.HookContext) error {
	attacker := hc.Attacker
	if attacker == nil || !attacker.IsAlive() {
		return nil
	}

	if reflectRate := hc.Owner.EffectiveStat(model.StatDamageReflection); reflectRate.IsPositive() && hc.Damage.IsPositive() {
		reflected := hc.Reflect(attacker, hc.Damage.Mul(reflectRate).Floor())
		hc.Logf("%s reflects %s damage to %s", hc.Owner.Name(), reflected, attacker.Name())
	}

	if g.counterChance <= 0 || !attacker.IsAlive() || !hc.Chance(g.counterChance) {
		return nil
	}
	if hc.Battle == nil || hc.Battle.Buffs == nil {
		return errors.New("counter needs a buff catalog")
	}
	def, ok := hc.Battle.Buffs.Buff(g.counterDebuff)
	if !ok {
		return fmt.Errorf("counter debuff %q not in catalog", g.counterDebuff)
	}
	hc.Logf("%s counters: %s on %s", g.Name(), def.Name(), attacker.Name())
	_, errs := hc.ApplyBuff(attacker, def, g.counterDuration)
	return errors.Join(errs...)
}
