package turn_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sacredcombat/internal/game/turn"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/testutil"
)

func TestEndTurn_ExpiresSacredBuffs(t *testing.T) {
	u := testutil.NewUnit(t, "apollo", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 1, Def: &testutil.StubBuff{BuffID: "shadow_armor_sacred", Sacred: true}})
	u.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "fortune_sacred", Sacred: true}})

	var s turn.Scheduler
	assert.Equal(t, []string{"shadow_armor_sacred"}, s.EndTurn(u))
	assert.False(t, u.HasBuff("shadow_armor_sacred"))

	inst, ok := u.Buff("fortune_sacred")
	require.True(t, ok)
	assert.Equal(t, 1, inst.Remaining)

	assert.Equal(t, []string{"fortune_sacred"}, s.EndTurn(u))
	assert.Empty(t, u.Buffs())
}

func TestEndTurn_ShrinksHPWithExpiredMaxHPBuff(t *testing.T) {
	u := testutil.NewUnit(t, "apollo", map[model.StatKey]int64{model.StatMaxHP: 100})
	u.AddBuff(&model.BuffInstance{Remaining: 1, Def: &testutil.StubBuff{BuffID: "vigor", Mods: []model.StatMod{
		{Stat: model.StatMaxHP, Type: model.StatModFlat, Value: testutil.D("100")},
	}}})
	u.Heal(testutil.D("100"))
	require.Equal(t, "200", u.CurrentHP().String())

	turn.Scheduler{}.EndTurn(u)
	assert.Equal(t, "100", u.CurrentHP().String())
}

func TestStartTurn_FiresHooksAndWarns(t *testing.T) {
	var order []string
	u := testutil.NewUnit(t, "apollo", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "b", Turn: func(*model.HookContext) error {
		order = append(order, "b")
		return errors.New("broken")
	}}})
	u.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "a", Turn: func(*model.HookContext) error {
		order = append(order, "a")
		return nil
	}}})
	b, rec := testutil.NewBattle(u, []*model.Unit{u}, nil, nil, 1)

	errs := turn.Scheduler{}.StartTurn(b, u)
	assert.Equal(t, []string{"b", "a"}, order)
	require.Len(t, errs, 1)
	var ce *model.ContentError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "b", ce.BuffID)
	assert.Len(t, rec.Lines(), 1)
}

func TestStartTurn_DeadUnitSkipped(t *testing.T) {
	called := false
	u := testutil.NewUnit(t, "apollo", nil)
	u.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "a", Turn: func(*model.HookContext) error {
		called = true
		return nil
	}}})
	u.TakeDamage(u.MaxHP())
	b, _ := testutil.NewBattle(u, nil, nil, nil, 1)

	assert.Nil(t, turn.Scheduler{}.StartTurn(b, u))
	assert.False(t, called)
}

func TestAdvance(t *testing.T) {
	b, _ := testutil.NewBattle(nil, nil, nil, nil, 1)
	assert.Equal(t, 2, turn.Scheduler{}.Advance(b))
	assert.Equal(t, 2, b.Turn)
}
