// Package script provides buff definitions whose hooks are written in Lua.
//
// A script defines any subset of these global functions; each defined one
// becomes a hook capability of the buff:
//
//	on_applied(ctx, duration)
//	modify_damage_taken(ctx, damage) -> decimal
//	modify_damage_dealt(ctx, damage) -> decimal
//	stat_mods(ctx, duration) -> {{stat=, type="percent"|"flat", value=}, ...}
//	on_hit_received(ctx)
//	on_turn_start(ctx)
//	guard_debuff(ctx, debuff_id) -> bool
//
// ctx carries owner, attacker (names, may be nil), skill, remaining, hp_ratio
// and damage (on-hit only). Scripts can call log(msg), chance(p),
// stat(who, key), base_stat(who, key), apply(who, buff_id, duration) and
// set_value(n); who is "owner" or "attacker". The buff's params are exposed
// as the global table params.
//
// damage, hp_ratio and stats are decimal userdata supporting + - * / unary
// minus, comparisons, tostring and concatenation; Lua numbers mix in freely.
// dec(x) builds a decimal from a number or numeric string and tonum(d)
// converts back to a float for the math library.
//
// stat_mods must use base_stat: effective stats are computed from stat_mods.
package script

import (
	"errors"
	"fmt"
	"log/slog"

	lua "github.com/Shopify/go-lua"
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/game/buff"
	"github.com/udisondev/sacredcombat/internal/model"
)

// Kind is the buff kind name the scripted factory is registered under.
const Kind = "lua"

// SourceParam is the Spec param holding the script text.
const SourceParam = "source"

var hookGlobals = map[model.Capability]string{
	model.CapApplied:     "on_applied",
	model.CapDamageTaken: "modify_damage_taken",
	model.CapDamageDealt: "modify_damage_dealt",
	model.CapStatMods:    "stat_mods",
	model.CapHitReceived: "on_hit_received",
	model.CapTurnStart:   "on_turn_start",
	model.CapDebuffGuard: "guard_debuff",
}

func init() {
	buff.RegisterKind(Kind, NewBuff)
}

// Buff is a scripted buff definition. It implements every capability
// interface and reports the ones its script defines through Has.
//
// Each Buff owns one Lua state and is not safe for concurrent use, matching
// the rest of a battle. Parallel simulations build their own catalogs.
// Hooks may re-enter the same state (a script reading a stat of a unit that
// carries the same buff).
type Buff struct {
	buff.Base

	state *lua.State
	caps  model.Capability
	// cur is the hook context of the innermost call in progress.
	cur *model.HookContext
	// inStatMods stops stat_mods from recursing through stat().
	inStatMods bool
}

// NewBuff compiles spec.Params[SourceParam] into a scripted definition.
func NewBuff(spec buff.Spec) (model.BuffDefinition, error) {
	src := spec.Params[SourceParam]
	if src == "" {
		return nil, errors.New("lua buff without source")
	}
	if len(spec.Stats) > 0 {
		return nil, errors.New("lua buff declares stats; return them from stat_mods")
	}

	b := &Buff{Base: spec.Base, state: lua.NewState()}
	b.openLibraries()
	b.registerAPI()
	registerDecimal(b.state)
	b.setParams(spec.Params)

	if err := lua.DoString(b.state, src); err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}
	for c, name := range hookGlobals {
		b.state.Global(name)
		if b.state.IsFunction(-1) {
			b.caps |= c
		}
		b.state.Pop(1)
	}
	return b, nil
}

// Has implements model.CapabilityReporter.
func (b *Buff) Has(c model.Capability) bool {
	return b.caps&c != 0
}

// openLibraries loads the side-effect-free standard libraries only.
func (b *Buff) openLibraries() {
	libs := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(b.state, lib.Name, lib.Function, true)
		b.state.Pop(1)
	}
	// Scripts must draw randomness through chance().
	b.state.Global("math")
	b.state.PushNil()
	b.state.SetField(-2, "random")
	b.state.PushNil()
	b.state.SetField(-2, "randomseed")
	b.state.Pop(1)
}

func (b *Buff) setParams(params map[string]string) {
	b.state.NewTable()
	for k, v := range params {
		if k == SourceParam {
			continue
		}
		b.state.PushString(v)
		b.state.SetField(-2, k)
	}
	b.state.SetGlobal("params")
}

func (b *Buff) OnApplied(hc *model.HookContext, duration int) error {
	return b.call(hc, CapName(model.CapApplied), 0, func(l *lua.State) int {
		l.PushInteger(duration)
		return 1
	}, nil)
}

func (b *Buff) ModifyDamageTaken(hc *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	return b.callDamage(hc, model.CapDamageTaken, damage)
}

func (b *Buff) ModifyDamageDealt(hc *model.HookContext, damage decimal.Decimal) (decimal.Decimal, error) {
	return b.callDamage(hc, model.CapDamageDealt, damage)
}

func (b *Buff) OnHitReceived(hc *model.HookContext) error {
	return b.call(hc, CapName(model.CapHitReceived), 0, nil, nil)
}

func (b *Buff) OnTurnStart(hc *model.HookContext) error {
	return b.call(hc, CapName(model.CapTurnStart), 0, nil, nil)
}

func (b *Buff) GuardDebuff(hc *model.HookContext, incoming model.BuffDefinition) (bool, error) {
	var blocked bool
	err := b.call(hc, CapName(model.CapDebuffGuard), 1, func(l *lua.State) int {
		l.PushString(incoming.ID())
		return 1
	}, func(l *lua.State) error {
		blocked = l.ToBoolean(-1)
		return nil
	})
	return blocked, err
}

// StatMods implements model.StatModifierProvider. A failing script
// contributes no modifiers.
func (b *Buff) StatMods(owner *model.Unit, duration int) []model.StatMod {
	if b.inStatMods {
		return nil
	}
	b.inStatMods = true
	defer func() { b.inStatMods = false }()

	hc := &model.HookContext{Owner: owner}
	var mods []model.StatMod
	err := b.call(hc, CapName(model.CapStatMods), 1, func(l *lua.State) int {
		l.PushInteger(duration)
		return 1
	}, func(l *lua.State) error {
		var err error
		mods, err = readStatMods(l)
		return err
	})
	if err != nil {
		slog.Warn("scripted stat modifiers failed",
			"buff", b.ID(),
			"unit", owner.Name(),
			"err", err)
		return nil
	}
	return mods
}

func (b *Buff) callDamage(hc *model.HookContext, c model.Capability, damage decimal.Decimal) (decimal.Decimal, error) {
	out := damage
	err := b.call(hc, CapName(c), 1, func(l *lua.State) int {
		pushDecimal(l, damage)
		return 1
	}, func(l *lua.State) error {
		d, ok := toDecimal(l, -1)
		if !ok {
			return fmt.Errorf("%s returned %s, want decimal", CapName(c), lua.TypeNameOf(l, -1))
		}
		out = d
		return nil
	})
	return out, err
}

// call invokes the global fn with (ctx, args...) and hands the results to
// read. A missing fn is a no-op. The Lua stack is balanced on return.
func (b *Buff) call(hc *model.HookContext, fn string, results int, args func(*lua.State) int, read func(*lua.State) error) error {
	l := b.state
	top := l.Top()
	defer l.SetTop(top)

	l.Global(fn)
	if !l.IsFunction(-1) {
		return nil
	}
	prev := b.cur
	b.cur = hc
	defer func() { b.cur = prev }()

	pushContext(l, hc)
	nargs := 1
	if args != nil {
		nargs += args(l)
	}
	if err := l.ProtectedCall(nargs, results, 0); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	if read == nil {
		return nil
	}
	return read(l)
}

// CapName returns the Lua global implementing capability c.
func CapName(c model.Capability) string {
	return hookGlobals[c]
}

func pushContext(l *lua.State, hc *model.HookContext) {
	l.NewTable()
	if hc.Owner != nil {
		l.PushString(hc.Owner.Name())
		l.SetField(-2, "owner")
		pushDecimal(l, hc.Owner.HPRatio())
		l.SetField(-2, "hp_ratio")
	}
	if hc.Attacker != nil {
		l.PushString(hc.Attacker.Name())
		l.SetField(-2, "attacker")
	}
	if hc.Instance != nil {
		l.PushInteger(hc.Instance.Remaining)
		l.SetField(-2, "remaining")
	}
	l.PushString(hc.SkillID)
	l.SetField(-2, "skill")
	pushDecimal(l, hc.Damage)
	l.SetField(-2, "damage")
}

func readStatMods(l *lua.State) ([]model.StatMod, error) {
	if l.IsNil(-1) {
		return nil, nil
	}
	if !l.IsTable(-1) {
		return nil, fmt.Errorf("stat_mods returned %s, want table", lua.TypeNameOf(l, -1))
	}
	n := l.RawLength(-1)
	mods := make([]model.StatMod, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(-1, i)
		m, err := readStatMod(l)
		l.Pop(1)
		if err != nil {
			return nil, fmt.Errorf("stat_mods[%d]: %w", i, err)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func readStatMod(l *lua.State) (model.StatMod, error) {
	if !l.IsTable(-1) {
		return model.StatMod{}, errors.New("entry is not a table")
	}
	l.Field(-1, "stat")
	stat, _ := l.ToString(-1)
	l.Pop(1)
	l.Field(-1, "type")
	typ, _ := l.ToString(-1)
	l.Pop(1)
	l.Field(-1, "value")
	value, ok := toDecimal(l, -1)
	l.Pop(1)

	key := model.StatKey(stat)
	if !key.IsValid() {
		return model.StatMod{}, fmt.Errorf("unknown stat %q", stat)
	}
	if !ok {
		return model.StatMod{}, errors.New("value is not a decimal")
	}
	m := model.StatMod{Stat: key, Value: value}
	switch typ {
	case "percent", "":
		m.Type = model.StatModPercent
	case "flat":
		m.Type = model.StatModFlat
	default:
		return model.StatMod{}, fmt.Errorf("unknown modifier type %q", typ)
	}
	return m, nil
}
