package model_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/testutil"
)

func TestNewStatBlock_MissingKey(t *testing.T) {
	values := map[model.StatKey]decimal.Decimal{}
	for _, k := range model.StatKeys {
		values[k] = decimal.Zero
	}
	delete(values, model.StatDefense)

	_, err := model.NewStatBlock(values)
	require.Error(t, err)

	var cfgErr *model.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "defense", cfgErr.Field)
	assert.True(t, errors.Is(err, model.ErrMissingStat))
}

func TestNewStatBlock_UnknownKey(t *testing.T) {
	values := map[model.StatKey]decimal.Decimal{"luck": decimal.Zero}
	for _, k := range model.StatKeys {
		values[k] = decimal.Zero
	}
	_, err := model.NewStatBlock(values)
	var cfgErr *model.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "luck", cfgErr.Field)
}

func TestNewUnit_PartialStatBlockRejected(t *testing.T) {
	_, err := model.NewUnit("ghost", model.StatBlock{})
	var cfgErr *model.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestStatBlock_WithDoesNotMutate(t *testing.T) {
	base := testutil.Stats(t, nil)
	next := base.With(model.StatDefense, decimal.NewFromInt(7))

	assert.True(t, base.Get(model.StatDefense).IsZero())
	assert.Equal(t, "7", next.Get(model.StatDefense).String())
}

func TestEffectiveStat_PercentAdditiveThenFlat(t *testing.T) {
	u := testutil.NewUnit(t, "apollo", map[model.StatKey]int64{model.StatAttackMax: 1000})

	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "rampage", Mods: []model.StatMod{
		{Stat: model.StatAttackMax, Type: model.StatModPercent, Value: testutil.D("1.0")},
	}}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "blessing", Mods: []model.StatMod{
		{Stat: model.StatAttackMax, Type: model.StatModPercent, Value: testutil.D("0.6")},
		{Stat: model.StatAttackMax, Type: model.StatModFlat, Value: testutil.D("50")},
	}}})

	// 1000 * (1 + 1.0 + 0.6) + 50
	assert.Equal(t, "2650", u.EffectiveStat(model.StatAttackMax).String())
	assert.Equal(t, "1000", u.BaseStat(model.StatAttackMax).String())
	assert.Equal(t, "100000", u.EffectiveStat(model.StatAgility).String())
}

func TestTakeDamage_FloorsAtZero(t *testing.T) {
	u := testutil.NewUnit(t, "target", map[model.StatKey]int64{model.StatMaxHP: 100})

	applied := u.TakeDamage(testutil.D("30"))
	assert.Equal(t, "30", applied.String())
	assert.Equal(t, "70", u.CurrentHP().String())

	applied = u.TakeDamage(testutil.D("500"))
	assert.Equal(t, "70", applied.String())
	assert.True(t, u.CurrentHP().IsZero())
	assert.False(t, u.IsAlive())

	assert.True(t, u.TakeDamage(testutil.D("-5")).IsZero())
	assert.True(t, u.CurrentHP().IsZero())
}

func TestHeal_ClampsToEffectiveMax(t *testing.T) {
	u := testutil.NewUnit(t, "target", map[model.StatKey]int64{model.StatMaxHP: 100})

	assert.True(t, u.Heal(testutil.D("10")).IsZero(), "full-health heal is a no-op")

	u.TakeDamage(testutil.D("40"))
	assert.Equal(t, "40", u.Heal(testutil.D("1000")).String())
	assert.Equal(t, "100", u.CurrentHP().String())
}

func TestBuffRemovalShrinksMaxHP(t *testing.T) {
	u := testutil.NewUnit(t, "target", map[model.StatKey]int64{model.StatMaxHP: 100})
	u.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "vigor", Removable: true, Mods: []model.StatMod{
		{Stat: model.StatMaxHP, Type: model.StatModPercent, Value: testutil.D("0.5")},
	}}})
	u.Heal(testutil.D("50"))
	require.Equal(t, "150", u.CurrentHP().String())

	require.True(t, u.RemoveBuff("vigor"))
	assert.Equal(t, "100", u.CurrentHP().String())
}

func TestAddBuff_ReplacesSameID(t *testing.T) {
	u := testutil.NewUnit(t, "target", nil)
	def := &testutil.StubBuff{BuffID: "armor_break_sin", Removable: true, Debuff: true}

	u.AddBuff(&model.BuffInstance{Def: def, Remaining: 1})
	u.AddBuff(&model.BuffInstance{Def: def, Remaining: 4})

	require.True(t, u.HasBuff("armor_break_sin"))
	assert.Len(t, u.Buffs(), 1)
	inst, ok := u.Buff("armor_break_sin")
	require.True(t, ok)
	assert.Equal(t, 4, inst.Remaining)
	assert.Same(t, u, inst.Owner)
}

func TestRemoveBuff_RespectsFlags(t *testing.T) {
	u := testutil.NewUnit(t, "target", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "shadow_armor_sacred", Sacred: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "taunt_sacred", Sacred: true, Removable: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "bleed_sin", Removable: true, Debuff: true}})

	assert.False(t, u.RemoveBuff("shadow_armor_sacred"))
	assert.True(t, u.HasBuff("shadow_armor_sacred"))
	assert.False(t, u.RemoveBuff("taunt_sacred"), "sacred buffs need a sacred dispel")
	assert.True(t, u.RemoveBuff("bleed_sin"))
	assert.False(t, u.RemoveBuff("missing"))

	assert.True(t, u.ForceRemoveBuff("shadow_armor_sacred"))
	assert.False(t, u.HasBuff("shadow_armor_sacred"))
}

func TestBuffs_DispatchOrder(t *testing.T) {
	u := testutil.NewUnit(t, "target", nil)
	for _, id := range []string{"c", "a", "b"} {
		u.AddBuff(&model.BuffInstance{Remaining: 1, Def: &testutil.StubBuff{BuffID: id}})
	}
	// Re-applying "c" moves it to the back.
	u.AddBuff(&model.BuffInstance{Remaining: 1, Def: &testutil.StubBuff{BuffID: "c"}})

	var ids []string
	for _, inst := range u.Buffs() {
		ids = append(ids, inst.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestCleanse(t *testing.T) {
	u := testutil.NewUnit(t, "target", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "bleed_sin", Removable: true, Debuff: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "fortune_sacred", Sacred: true, Removable: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "curse_sin", Debuff: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "armor_break_sin", Removable: true, Debuff: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "silence_sin", Removable: true, Debuff: true}})

	removed := u.Cleanse(2)
	assert.Equal(t, []string{"bleed_sin", "armor_break_sin"}, removed)
	assert.True(t, u.HasBuff("curse_sin"))
	assert.True(t, u.HasBuff("silence_sin"))
	assert.True(t, u.HasBuff("fortune_sacred"))
}

func TestClone_IsIsolated(t *testing.T) {
	u := testutil.NewUnit(t, "origin", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: "bleed_sin", Removable: true, Debuff: true}})
	u.TakeDamage(testutil.D("1000"))

	c := u.Clone()
	c.TakeDamage(testutil.D("1000"))
	inst, ok := c.Buff("bleed_sin")
	require.True(t, ok)
	inst.Decrement()
	assert.Same(t, c, inst.Owner)

	assert.Equal(t, "999000", u.CurrentHP().String())
	assert.Equal(t, "998000", c.CurrentHP().String())
	orig, _ := u.Buff("bleed_sin")
	assert.Equal(t, 3, orig.Remaining)
}

func TestClone_DetachesBuffSources(t *testing.T) {
	u := testutil.NewUnit(t, "origin", nil)
	enemy := testutil.NewUnit(t, "enemy", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 3, Source: enemy, Def: &testutil.StubBuff{BuffID: "bleed_sin", Debuff: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 3, Source: u, Def: &testutil.StubBuff{BuffID: "fortune_sacred", Sacred: true}})

	c := u.Clone()

	bleed, ok := c.Buff("bleed_sin")
	require.True(t, ok)
	assert.Nil(t, bleed.Source)
	fortune, ok := c.Buff("fortune_sacred")
	require.True(t, ok)
	assert.Same(t, c, fortune.Source)

	orig, _ := u.Buff("bleed_sin")
	assert.Same(t, enemy, orig.Source)
}

func TestUnitProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.Int64Range(1, 10_000_000).Draw(rt, "maxHP")
		u := testutil.NewUnit(t, "prop", map[model.StatKey]int64{model.StatMaxHP: maxHP})

		ops := rapid.SliceOfN(rapid.Int64Range(-5_000_000, 5_000_000), 1, 20).Draw(rt, "ops")
		for _, op := range ops {
			amount := decimal.NewFromInt(op)
			if op < 0 {
				u.Heal(amount.Neg())
			} else {
				u.TakeDamage(amount)
			}
			hp := u.CurrentHP()
			if hp.IsNegative() || hp.GreaterThan(u.MaxHP()) {
				rt.Fatalf("hp %s outside [0, %s]", hp, u.MaxHP())
			}
		}

		full := testutil.NewUnit(t, "full", map[model.StatKey]int64{model.StatMaxHP: maxHP})
		h := rapid.Int64Range(0, 5_000_000).Draw(rt, "heal")
		if !full.Heal(decimal.NewFromInt(h)).IsZero() {
			rt.Fatalf("healing a full-health unit restored health")
		}
	})
}

func TestReapplyProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		u := testutil.NewUnit(t, "prop", nil)
		def := &testutil.StubBuff{BuffID: "mist_sacred", Sacred: true, Removable: true}
		durations := rapid.SliceOfN(rapid.IntRange(1, 10), 1, 10).Draw(rt, "durations")
		for _, d := range durations {
			u.AddBuff(&model.BuffInstance{Def: def, Remaining: d})
		}
		inst, ok := u.Buff("mist_sacred")
		if !ok || len(u.Buffs()) != 1 || inst.Remaining != durations[len(durations)-1] {
			rt.Fatalf("expected single instance with last duration %d", durations[len(durations)-1])
		}
	})
}
