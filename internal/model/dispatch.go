package model

import (
	"github.com/shopspring/decimal"
)

// ChainDamageTaken runs the defender's DamageTakenModifier hooks in dispatch
// order, each receiving the previous output. Once the amount reaches zero the
// chain stops and zero is returned. A failing hook is skipped and reported.
func ChainDamageTaken(b *Battle, skillID string, defender, attacker *Unit, damage decimal.Decimal) (decimal.Decimal, []error) {
	return runChain(b, skillID, defender, attacker, damage, CapDamageTaken,
		DamageTakenModifier.ModifyDamageTaken)
}

// ChainDamageDealt runs the attacker's DamageDealtModifier hooks, with the same
// composition rules as ChainDamageTaken.
func ChainDamageDealt(b *Battle, skillID string, attacker, defender *Unit, damage decimal.Decimal) (decimal.Decimal, []error) {
	return runChain(b, skillID, attacker, defender, damage, CapDamageDealt,
		DamageDealtModifier.ModifyDamageDealt)
}

func runChain[T any](
	b *Battle,
	skillID string,
	owner, other *Unit,
	damage decimal.Decimal,
	c Capability,
	call func(T, *HookContext, decimal.Decimal) (decimal.Decimal, error),
) (decimal.Decimal, []error) {
	var errs []error
	for _, inst := range owner.Buffs() {
		if !damage.IsPositive() {
			return decimal.Zero, errs
		}
		h, ok := hookOf[T](inst.Def, c)
		if !ok || !attached(owner, inst) {
			continue
		}
		hc := &HookContext{Battle: b, Owner: owner, Attacker: other, Instance: inst, SkillID: skillID}
		var out decimal.Decimal
		err := Guard(func() error {
			var err error
			out, err = call(h, hc, damage)
			return err
		})
		if err != nil {
			errs = append(errs, hookError(skillID, inst, owner, c, err))
			continue
		}
		damage = out
	}
	if !damage.IsPositive() {
		return decimal.Zero, errs
	}
	return damage, errs
}

// FireHitReceived runs the defender's HitReceivedHook hooks after damage was
// applied.
func FireHitReceived(b *Battle, skillID string, defender, attacker *Unit, applied decimal.Decimal) []error {
	var errs []error
	for _, inst := range defender.Buffs() {
		h, ok := hookOf[HitReceivedHook](inst.Def, CapHitReceived)
		if !ok || !attached(defender, inst) {
			continue
		}
		hc := &HookContext{Battle: b, Owner: defender, Attacker: attacker, Instance: inst, SkillID: skillID, Damage: applied}
		if err := Guard(func() error { return h.OnHitReceived(hc) }); err != nil {
			errs = append(errs, hookError(skillID, inst, defender, CapHitReceived, err))
		}
	}
	return errs
}

// FireTurnStart runs the owner's TurnStartHook hooks.
func FireTurnStart(b *Battle, owner *Unit) []error {
	var errs []error
	for _, inst := range owner.Buffs() {
		h, ok := hookOf[TurnStartHook](inst.Def, CapTurnStart)
		if !ok || !attached(owner, inst) {
			continue
		}
		hc := &HookContext{Battle: b, Owner: owner, Instance: inst}
		if err := Guard(func() error { return h.OnTurnStart(hc) }); err != nil {
			errs = append(errs, hookError("", inst, owner, CapTurnStart, err))
		}
	}
	return errs
}

// ApplyBuff attaches a fresh instance of def to owner and fires OnApplied.
// Debuffs are offered to the owner's DebuffGuard hooks first; a guard that
// blocks cancels the application and ApplyBuff returns nil.
func ApplyBuff(b *Battle, skillID string, owner, source *Unit, def BuffDefinition, duration int) (*BuffInstance, []error) {
	var errs []error
	if def.IsDebuff() {
		for _, inst := range owner.Buffs() {
			g, ok := hookOf[DebuffGuard](inst.Def, CapDebuffGuard)
			if !ok || !attached(owner, inst) {
				continue
			}
			hc := &HookContext{Battle: b, Owner: owner, Attacker: source, Instance: inst, SkillID: skillID}
			var blocked bool
			err := Guard(func() error {
				var err error
				blocked, err = g.GuardDebuff(hc, def)
				return err
			})
			if err != nil {
				errs = append(errs, hookError(skillID, inst, owner, CapDebuffGuard, err))
				continue
			}
			if blocked {
				return nil, errs
			}
		}
	}

	inst := &BuffInstance{Def: def, Remaining: duration, Source: source}
	owner.AddBuff(inst)

	if h, ok := hookOf[AppliedHook](def, CapApplied); ok {
		hc := &HookContext{Battle: b, Owner: owner, Attacker: source, Instance: inst, SkillID: skillID}
		if err := Guard(func() error { return h.OnApplied(hc, duration) }); err != nil {
			errs = append(errs, hookError(skillID, inst, owner, CapApplied, err))
		}
	}
	return inst, errs
}

// attached reports whether inst is still the live instance on owner; an
// earlier hook in the same dispatch may have removed or replaced it.
func attached(owner *Unit, inst *BuffInstance) bool {
	cur, ok := owner.buffs[inst.ID()]
	return ok && cur == inst
}

func hookError(skillID string, inst *BuffInstance, owner *Unit, c Capability, err error) error {
	return &ContentError{
		SkillID: skillID,
		BuffID:  inst.ID(),
		Unit:    owner.Name(),
		Op:      c.String(),
		Err:     err,
	}
}
