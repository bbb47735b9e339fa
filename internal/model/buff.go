package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// BuffDefinition is the static, shared part of a buff. Definitions are never
// mutated at runtime; per-unit state lives in BuffInstance.
//
// A definition opts into hook dispatch by implementing any subset of the
// capability interfaces below. Dispatch only visits definitions that
// implement the capability being fired.
type BuffDefinition interface {
	ID() string
	Name() string
	// IsSacred marks buffs immune to ordinary dispel.
	IsSacred() bool
	// IsRemovable is false for buffs that ordinary removal must leave in place.
	IsRemovable() bool
	// IsDebuff marks harmful buffs (cleanse and debuff guards act on these).
	IsDebuff() bool
}

// AppliedHook fires once each time an instance is attached.
type AppliedHook interface {
	OnApplied(hc *HookContext, duration int) error
}

// DamageTakenModifier adjusts damage incoming to the owner. Hooks are chained:
// each receives the output of the previous one.
type DamageTakenModifier interface {
	ModifyDamageTaken(hc *HookContext, damage decimal.Decimal) (decimal.Decimal, error)
}

// DamageDealtModifier adjusts damage outgoing from the owner, before the
// defender's DamageTakenModifier chain runs.
type DamageDealtModifier interface {
	ModifyDamageDealt(hc *HookContext, damage decimal.Decimal) (decimal.Decimal, error)
}

// StatModifierProvider contributes to Unit.EffectiveStat.
//
// Implementations must read the owner's base stats only: calling
// EffectiveStat from here recurses.
type StatModifierProvider interface {
	StatMods(owner *Unit, duration int) []StatMod
}

// HitReceivedHook fires after damage has been applied to the owner.
type HitReceivedHook interface {
	OnHitReceived(hc *HookContext) error
}

// TurnStartHook fires at the owner's turn start.
type TurnStartHook interface {
	OnTurnStart(hc *HookContext) error
}

// DebuffGuard may block a debuff about to be attached to the owner.
type DebuffGuard interface {
	GuardDebuff(hc *HookContext, incoming BuffDefinition) (bool, error)
}

// Capability names one hook slot.
type Capability uint16

const (
	CapApplied Capability = 1 << iota
	CapDamageTaken
	CapDamageDealt
	CapStatMods
	CapHitReceived
	CapTurnStart
	CapDebuffGuard
)

func (c Capability) String() string {
	switch c {
	case CapApplied:
		return "on_applied"
	case CapDamageTaken:
		return "modify_damage_taken"
	case CapDamageDealt:
		return "modify_damage_dealt"
	case CapStatMods:
		return "stat_mods"
	case CapHitReceived:
		return "on_hit_received"
	case CapTurnStart:
		return "on_turn_start"
	case CapDebuffGuard:
		return "guard_debuff"
	default:
		return "unknown"
	}
}

// CapabilityReporter is implemented by definitions whose hook set is only
// known at runtime (scripted buffs). Such a definition may satisfy every
// capability interface and use Has to say which ones are real.
type CapabilityReporter interface {
	Has(c Capability) bool
}

// hookOf returns def as hook type T when it implements capability c.
func hookOf[T any](def BuffDefinition, c Capability) (T, bool) {
	h, ok := def.(T)
	if !ok {
		return h, false
	}
	if r, ok := def.(CapabilityReporter); ok && !r.Has(c) {
		var zero T
		return zero, false
	}
	return h, true
}

// BuffInstance is a buff attached to one unit.
type BuffInstance struct {
	Def       BuffDefinition
	Remaining int
	Owner     *Unit
	// Source is the unit that applied the buff; nil for scripted setup.
	Source *Unit
	// Value holds per-instance magnitude recorded by hooks (for example the
	// shield strength computed on apply).
	Value decimal.Decimal

	seq uint64
}

// ID returns the definition id.
func (bi *BuffInstance) ID() string {
	return bi.Def.ID()
}

// Decrement lowers the remaining duration by one turn.
func (bi *BuffInstance) Decrement() {
	bi.Remaining--
}

// Expired reports whether the instance should be removed.
func (bi *BuffInstance) Expired() bool {
	return bi.Remaining <= 0
}

// HookContext is passed to every buff hook.
type HookContext struct {
	Battle *Battle
	// Owner is the unit carrying the buff.
	Owner *Unit
	// Attacker is the opposing actor of the event: the attacker for damage
	// taken and hit reactions, the defender for damage dealt. May be nil.
	Attacker *Unit
	Instance *BuffInstance
	SkillID  string
	// Damage is the amount just applied; set for on-hit hooks only.
	Damage decimal.Decimal
}

// Logf writes to the battle log sink.
func (hc *HookContext) Logf(format string, args ...any) {
	if hc.Battle != nil {
		hc.Battle.Logf(format, args...)
	}
}

// Chance reports whether a roll against p succeeds using the battle source.
// Without a battle or source it never succeeds.
func (hc *HookContext) Chance(p float64) bool {
	if hc.Battle == nil || hc.Battle.Rand == nil {
		return false
	}
	return hc.Battle.Rand.Float64() < p
}

// ApplyBuff attaches def to target on behalf of the owner and reports the
// attachment to the battle journal.
func (hc *HookContext) ApplyBuff(target *Unit, def BuffDefinition, duration int) (*BuffInstance, []error) {
	if target == nil {
		return nil, []error{errors.New("apply: nil target")}
	}
	inst, errs := ApplyBuff(hc.Battle, hc.SkillID, target, hc.Owner, def, duration)
	if inst != nil {
		hc.Battle.noteAttached(target, def.ID(), duration)
	}
	return inst, errs
}

// ForceRemove removes id from the owner regardless of sacred or removable
// flags and reports the removal to the battle journal.
func (hc *HookContext) ForceRemove(id string) bool {
	if !hc.Owner.ForceRemoveBuff(id) {
		return false
	}
	hc.Battle.noteDetached(hc.Owner, id)
	return true
}

// Cleanse removes up to n removable debuffs from the owner and reports each
// removal to the battle journal.
func (hc *HookContext) Cleanse(n int) []string {
	removed := hc.Owner.Cleanse(n)
	for _, id := range removed {
		hc.Battle.noteDetached(hc.Owner, id)
	}
	return removed
}

// Reflect deals amount to target outside any damage chain and reports it to
// the battle journal. Returns the health actually removed.
func (hc *HookContext) Reflect(target *Unit, amount decimal.Decimal) decimal.Decimal {
	applied := target.TakeDamage(amount)
	hc.Battle.noteReflected(hc.Owner, target, amount, applied)
	return applied
}
