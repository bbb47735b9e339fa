package script

import (
	lua "github.com/Shopify/go-lua"

	"github.com/udisondev/sacredcombat/internal/model"
)

// registerAPI exposes the Go helpers scripts may call. Every helper reads
// the hook context of the call in progress.
func (b *Buff) registerAPI() {
	b.state.Register("log", func(l *lua.State) int {
		msg := lua.CheckString(l, 1)
		b.current(l).Logf("%s", msg)
		return 0
	})
	b.state.Register("chance", func(l *lua.State) int {
		p := lua.CheckNumber(l, 1)
		l.PushBoolean(b.current(l).Chance(p))
		return 1
	})
	b.state.Register("stat", func(l *lua.State) int {
		u := b.unit(l, 1)
		key := checkStat(l, 2)
		pushDecimal(l, u.EffectiveStat(key))
		return 1
	})
	b.state.Register("base_stat", func(l *lua.State) int {
		u := b.unit(l, 1)
		key := checkStat(l, 2)
		pushDecimal(l, u.BaseStat(key))
		return 1
	})
	b.state.Register("apply", func(l *lua.State) int {
		hc := b.current(l)
		target := b.unit(l, 1)
		id := lua.CheckString(l, 2)
		duration := lua.CheckInteger(l, 3)
		if hc.Battle == nil || hc.Battle.Buffs == nil {
			lua.Errorf(l, "apply: no buff catalog")
		}
		def, ok := hc.Battle.Buffs.Buff(id)
		if !ok {
			lua.Errorf(l, "apply: unknown buff %s", id)
		}
		inst, errs := hc.ApplyBuff(target, def, duration)
		for _, err := range errs {
			hc.Battle.Warn(err)
		}
		l.PushBoolean(inst != nil)
		return 1
	})
	b.state.Register("set_value", func(l *lua.State) int {
		hc := b.current(l)
		if hc.Instance == nil {
			lua.Errorf(l, "set_value: no instance")
		}
		hc.Instance.Value = checkDecimal(l, 1)
		return 0
	})
}

func (b *Buff) current(l *lua.State) *model.HookContext {
	if b.cur == nil {
		lua.Errorf(l, "called outside a hook")
	}
	return b.cur
}

// unit resolves the "owner"/"attacker" argument at index.
func (b *Buff) unit(l *lua.State, index int) *model.Unit {
	hc := b.current(l)
	var u *model.Unit
	switch who := lua.CheckString(l, index); who {
	case "owner":
		u = hc.Owner
	case "attacker":
		u = hc.Attacker
	default:
		lua.ArgumentError(l, index, "want owner or attacker")
	}
	if u == nil {
		lua.Errorf(l, "no %s in this hook", lua.CheckString(l, index))
	}
	return u
}

func checkStat(l *lua.State, index int) model.StatKey {
	key := model.StatKey(lua.CheckString(l, index))
	if !key.IsValid() {
		lua.ArgumentError(l, index, "unknown stat")
	}
	return key
}
