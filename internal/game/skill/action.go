package skill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Action is a pre- or post-step run once per invocation.
type Action func(ac *ActionContext) error

// ActionContext gives actions and the effect loop shared access to the
// battle and the resolution record.
type ActionContext struct {
	Battle  *model.Battle
	SkillID string

	res    *Resolution
	effect int
}

// Warn records a recovered failure in the battle log, slog and the record.
func (ac *ActionContext) Warn(err error) {
	ac.Battle.Warn(err)
	ac.res.Warnings = append(ac.res.Warnings, newWarning(err))
}

// journal feeds changes made by buff hooks into the resolution record.
type journal struct {
	ac *ActionContext
}

func (j journal) BuffAttached(u *model.Unit, id string, duration int) {
	j.ac.res.BuffsApplied = append(j.ac.res.BuffsApplied, BuffChange{Unit: u.Name(), BuffID: id, Duration: duration})
}

func (j journal) BuffDetached(u *model.Unit, id string) {
	j.ac.res.BuffsRemoved = append(j.ac.res.BuffsRemoved, BuffChange{Unit: u.Name(), BuffID: id})
}

func (j journal) DamageReflected(from, to *model.Unit, amount, applied decimal.Decimal) {
	j.ac.res.Reflected = append(j.ac.res.Reflected, Hit{
		Target:  to.Name(),
		Source:  from.Name(),
		Effect:  j.ac.effect,
		Kind:    KindDamage,
		Raw:     amount,
		Final:   amount,
		Applied: applied,
	})
}

// ApplyBuff looks id up in the battle catalog and applies it to target on
// behalf of the attacker. Reports whether an instance was attached; a debuff
// guard may block it.
func (ac *ActionContext) ApplyBuff(target *model.Unit, id string, duration int) bool {
	if ac.Battle.Buffs == nil {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, BuffID: id, Unit: target.Name(), Op: "apply", Err: errors.New("no buff catalog")})
		return false
	}
	def, ok := ac.Battle.Buffs.Buff(id)
	if !ok {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, BuffID: id, Unit: target.Name(), Op: "apply", Err: errors.New("unknown buff")})
		return false
	}
	inst, errs := model.ApplyBuff(ac.Battle, ac.SkillID, target, ac.Battle.Attacker, def, duration)
	for _, err := range errs {
		ac.Warn(err)
	}
	if inst == nil {
		ac.Battle.Logf("%s resists %s", target.Name(), def.Name())
		return false
	}
	ac.Battle.Logf("%s gains %s (%d turns)", target.Name(), def.Name(), duration)
	ac.res.BuffsApplied = append(ac.res.BuffsApplied, BuffChange{Unit: target.Name(), BuffID: id, Duration: duration})
	return true
}

// RemoveBuff performs an ordinary removal of id from target and records the
// outcome.
func (ac *ActionContext) RemoveBuff(target *model.Unit, id string) bool {
	change := BuffChange{Unit: target.Name(), BuffID: id}
	if !target.HasBuff(id) {
		return false
	}
	if !target.RemoveBuff(id) {
		ac.Battle.Logf("%s cannot be removed from %s", id, target.Name())
		ac.res.RemovalsRefused = append(ac.res.RemovalsRefused, change)
		return false
	}
	ac.Battle.Logf("%s loses %s", target.Name(), id)
	ac.res.BuffsRemoved = append(ac.res.BuffsRemoved, change)
	return true
}

// CleanseSelf removes up to n removable debuffs from the attacker.
func CleanseSelf(n int) Action {
	return func(ac *ActionContext) error {
		caster := ac.Battle.Attacker
		removed := caster.Cleanse(n)
		for _, id := range removed {
			ac.res.BuffsRemoved = append(ac.res.BuffsRemoved, BuffChange{Unit: caster.Name(), BuffID: id})
		}
		if len(removed) > 0 {
			ac.Battle.Logf("%s cleanses %s", caster.Name(), strings.Join(removed, ", "))
		}
		return nil
	}
}

// SelfBuff applies every id to the attacker.
func SelfBuff(duration int, ids ...string) Action {
	return func(ac *ActionContext) error {
		for _, id := range ids {
			ac.ApplyBuff(ac.Battle.Attacker, id, duration)
		}
		return nil
	}
}

// AllyBuff applies id to every unit sel returns.
func AllyBuff(sel Selector, id string, duration int) Action {
	return func(ac *ActionContext) error {
		for _, u := range sel(ac.Battle) {
			ac.ApplyBuff(u, id, duration)
		}
		return nil
	}
}

// Announce writes msg to the battle log.
func Announce(msg string) Action {
	return func(ac *ActionContext) error {
		ac.Battle.Logf("%s", msg)
		return nil
	}
}

// Sequence runs actions in order. A failing step does not stop the rest;
// failures are joined.
func Sequence(actions ...Action) Action {
	return func(ac *ActionContext) error {
		var errs []error
		for i, a := range actions {
			if err := model.Guard(func() error { return a(ac) }); err != nil {
				errs = append(errs, fmt.Errorf("step %d: %w", i, err))
			}
		}
		return errors.Join(errs...)
	}
}
