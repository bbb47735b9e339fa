package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Resolver states.
const (
	StateIdle            = "idle"
	StatePreActions      = "pre_actions"
	StateTargetSelection = "target_selection"
	StateEffectLoop      = "effect_loop"
	StatePostActions     = "post_actions"
	StateDone            = "done"
)

const (
	eventBegin    = "begin"
	eventSelect   = "select"
	eventResolve  = "resolve"
	eventSkip     = "skip"
	eventFinish   = "finish"
	eventComplete = "complete"
)

// Resolver runs one skill invocation:
//
//	idle → pre_actions → target_selection → effect_loop → post_actions → done
//
// An empty selection goes from target_selection straight to post_actions.
// A Resolver serves exactly one Execute call.
type Resolver struct {
	def     *Definition
	machine *fsm.FSM
}

// NewResolver returns a resolver for def in the idle state.
func NewResolver(def *Definition) *Resolver {
	r := &Resolver{def: def}
	r.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventBegin, Src: []string{StateIdle}, Dst: StatePreActions},
			{Name: eventSelect, Src: []string{StatePreActions}, Dst: StateTargetSelection},
			{Name: eventResolve, Src: []string{StateTargetSelection}, Dst: StateEffectLoop},
			{Name: eventSkip, Src: []string{StateTargetSelection}, Dst: StatePostActions},
			{Name: eventFinish, Src: []string{StateEffectLoop}, Dst: StatePostActions},
			{Name: eventComplete, Src: []string{StatePostActions}, Dst: StateDone},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				slog.Debug("skill resolver transition",
					"skill", r.skillID(),
					"from", e.Src,
					"to", e.Dst)
			},
		},
	)
	return r
}

// Execute resolves def against b with a fresh resolver.
func Execute(def *Definition, b *model.Battle) *Resolution {
	return NewResolver(def).Execute(b)
}

// State returns the current resolver state.
func (r *Resolver) State() string {
	return r.machine.Current()
}

// Execute runs the skill. It never panics and never returns nil: every
// failure ends up in the returned record's warnings.
func (r *Resolver) Execute(b *model.Battle) (res *Resolution) {
	res = &Resolution{SkillID: r.skillID()}
	if r.def != nil {
		res.SkillName = r.def.Name
	}
	if b == nil {
		res.Warnings = append(res.Warnings, newWarning(&model.StateError{
			SkillID: res.SkillID, Op: "execute", Err: errors.New("nil battle"),
		}))
		return res
	}
	ac := &ActionContext{Battle: b, SkillID: res.SkillID, res: res}
	res.Turn = b.Turn
	if b.Attacker != nil {
		res.Caster = b.Attacker.Name()
	}

	ctx := context.Background()
	if err := r.machine.Event(ctx, eventBegin); err != nil {
		ac.Warn(&model.StateError{SkillID: res.SkillID, Unit: res.Caster, Op: "execute", Err: fmt.Errorf("resolver reused: %w", err)})
		return res
	}
	if r.def == nil || b.Attacker == nil {
		ac.Warn(&model.StateError{SkillID: res.SkillID, Op: "execute", Err: errors.New("missing skill or attacker")})
		return res
	}

	prev := b.Journal
	b.Journal = journal{ac}
	defer func() {
		b.Journal = prev
		if v := recover(); v != nil {
			ac.Warn(&model.ContentError{SkillID: res.SkillID, Unit: res.Caster, Op: "resolve", Err: fmt.Errorf("panic: %v", v)})
		}
	}()

	r.runAction(ac, r.def.Pre, "pre_action")
	r.step(ctx, ac, eventSelect)

	targets := r.selectTargets(ac)
	for _, t := range targets {
		name := "<nil>"
		if t != nil {
			name = t.Name()
		}
		res.Targets = append(res.Targets, name)
	}

	if len(targets) == 0 {
		b.Logf("%s: no targets", r.def.Name)
		r.step(ctx, ac, eventSkip)
	} else {
		r.step(ctx, ac, eventResolve)
		r.effectLoop(ac, targets)
		r.step(ctx, ac, eventFinish)
	}

	r.runAction(ac, r.def.Post, "post_action")
	r.step(ctx, ac, eventComplete)
	return res
}

func (r *Resolver) skillID() string {
	if r.def == nil {
		return ""
	}
	return r.def.ID
}

func (r *Resolver) step(ctx context.Context, ac *ActionContext, event string) {
	if err := r.machine.Event(ctx, event); err != nil {
		ac.Warn(&model.StateError{SkillID: ac.SkillID, Op: event, Err: err})
	}
}

func (r *Resolver) runAction(ac *ActionContext, a Action, op string) {
	if a == nil {
		return
	}
	if err := model.Guard(func() error { return a(ac) }); err != nil {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, Unit: ac.Battle.Attacker.Name(), Op: op, Err: err})
	}
}

func (r *Resolver) selectTargets(ac *ActionContext) []*model.Unit {
	if r.def.Targets == nil {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, Op: "select", Err: errors.New("skill has no target selector")})
		return nil
	}
	var targets []*model.Unit
	err := model.Guard(func() error {
		targets = r.def.Targets(ac.Battle)
		return nil
	})
	if err != nil {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, Unit: ac.Battle.Attacker.Name(), Op: "select", Err: err})
		return nil
	}
	return targets
}

func (r *Resolver) effectLoop(ac *ActionContext, targets []*model.Unit) {
	b := ac.Battle
	for _, target := range targets {
		if target == nil {
			ac.Warn(&model.StateError{SkillID: ac.SkillID, Op: "target", Err: errors.New("nil target")})
			continue
		}
		for i := range r.def.Effects {
			if !target.IsAlive() {
				b.Logf("%s is already down", target.Name())
				break
			}
			ac.effect = i
			if err := model.Guard(func() error { r.applyEffect(ac, i, target); return nil }); err != nil {
				ac.Warn(&model.ContentError{SkillID: ac.SkillID, BuffID: r.def.Effects[i].BuffID, Unit: target.Name(), Op: "effect", Err: err})
			}
		}
	}
}

func (r *Resolver) applyEffect(ac *ActionContext, index int, target *model.Unit) {
	b := ac.Battle
	eff := &r.def.Effects[index]
	attacker := b.Attacker
	fail := func(op string, err error) {
		ac.Warn(&model.ContentError{SkillID: ac.SkillID, BuffID: eff.BuffID, Unit: target.Name(), Op: op, Err: err})
	}

	if eff.Condition != nil {
		var ok bool
		if err := model.Guard(func() error { ok = eff.Condition(attacker, target); return nil }); err != nil {
			fail("condition", err)
			return
		}
		if !ok {
			return
		}
	}
	if eff.Probability > 0 && b.Rand == nil {
		ac.Warn(&model.StateError{SkillID: ac.SkillID, Unit: target.Name(), Op: "probability", Err: errors.New("battle has no random source")})
		return
	}
	if eff.Probability > 0 && b.Rand.Float64() >= eff.Probability {
		b.Logf("%s on %s did not take hold", eff.Kind, target.Name())
		return
	}

	switch eff.Kind {
	case KindDamage:
		raw, err := r.amount(eff, attacker, target)
		if err != nil {
			fail("damage formula", err)
			return
		}
		r.damage(ac, index, target, raw)
	case KindHeal:
		amt, err := r.amount(eff, attacker, target)
		if err != nil {
			fail("heal formula", err)
			return
		}
		healed := target.Heal(amt)
		b.Logf("%s recovers %s", target.Name(), healed)
		ac.res.Hits = append(ac.res.Hits, Hit{Target: target.Name(), Effect: index, Kind: eff.Kind, Raw: amt, Healed: healed})
	case KindApplyBuff, KindApplyDebuff:
		ac.ApplyBuff(target, eff.BuffID, eff.Duration)
	case KindRemoveBuff:
		ac.RemoveBuff(target, eff.BuffID)
	default:
		fail("effect", fmt.Errorf("unsupported effect kind %s", eff.Kind))
	}
}

func (r *Resolver) amount(eff *Effect, attacker, target *model.Unit) (decimal.Decimal, error) {
	if eff.Formula == nil {
		return decimal.Zero, errors.New("effect has no formula")
	}
	var amt decimal.Decimal
	err := model.Guard(func() error {
		var err error
		amt, err = eff.Formula(attacker, target)
		return err
	})
	return amt, err
}

// damage runs the dealt chain, the taken chain, applies the result and fires
// the defender's hit reactions.
func (r *Resolver) damage(ac *ActionContext, index int, target *model.Unit, raw decimal.Decimal) {
	b := ac.Battle
	attacker := b.Attacker

	dealt, errs := model.ChainDamageDealt(b, ac.SkillID, attacker, target, raw)
	for _, err := range errs {
		ac.Warn(err)
	}
	final, errs := model.ChainDamageTaken(b, ac.SkillID, target, attacker, dealt)
	for _, err := range errs {
		ac.Warn(err)
	}
	final = decimal.Max(final, decimal.Zero)
	applied := target.TakeDamage(final)

	hit := Hit{
		Target:  target.Name(),
		Effect:  index,
		Kind:    KindDamage,
		Raw:     raw,
		Final:   final,
		Applied: applied,
		Negated: final.IsZero() && raw.IsPositive(),
	}
	ac.res.Hits = append(ac.res.Hits, hit)
	if hit.Negated {
		b.Logf("%s takes no damage", target.Name())
	} else {
		b.Logf("%s deals %s damage to %s", attacker.Name(), applied, target.Name())
	}

	for _, err := range model.FireHitReceived(b, ac.SkillID, target, attacker, applied) {
		ac.Warn(err)
	}
	if !target.IsAlive() {
		b.Logf("%s falls", target.Name())
	}
}
