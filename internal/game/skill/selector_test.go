package skill_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/udisondev/sacredcombat/internal/game/skill"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/rng"
	"github.com/udisondev/sacredcombat/internal/testutil"
)

const armorBreak = "armor_break_sin"

func markArmorBreak(u *model.Unit) {
	u.AddBuff(&model.BuffInstance{Remaining: 3, Def: &testutil.StubBuff{BuffID: armorBreak, Debuff: true, Removable: true}})
}

func names(units []*model.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Name()
	}
	return out
}

func TestPriorityRandom_PreferredDrawnFirst(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			marked := testutil.NewUnit(t, "marked", nil)
			clean := testutil.NewUnit(t, "clean", nil)
			markArmorBreak(marked)
			b, _ := testutil.NewBattle(nil, nil, []*model.Unit{marked, clean}, nil, seed)

			got := skill.PriorityRandom(skill.LacksBuff(armorBreak), 9)(b)
			require.Len(t, got, 9)
			assert.Same(t, clean, got[0])
			assert.Same(t, marked, got[1])
		})
	}
}

func TestPriorityRandom_Property(t *testing.T) {
	stats := testutil.Stats(t, nil)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "enemies")
		k := rapid.IntRange(0, n).Draw(t, "preferred")
		count := rapid.IntRange(0, 20).Draw(t, "count")
		seed := rapid.Uint64().Draw(t, "seed")

		enemies := make([]*model.Unit, n)
		for i := range enemies {
			u, err := model.NewUnit(fmt.Sprintf("e%d", i), stats)
			if err != nil {
				t.Fatal(err)
			}
			if i >= k {
				markArmorBreak(u)
			}
			enemies[i] = u
		}
		b, _ := testutil.NewBattle(nil, nil, enemies, nil, seed)
		got := skill.PriorityRandom(skill.LacksBuff(armorBreak), count)(b)

		if len(got) != count {
			t.Fatalf("got %d targets, want %d", len(got), count)
		}
		seen := map[*model.Unit]bool{}
		for i := 0; i < min(count, n); i++ {
			if seen[got[i]] {
				t.Fatalf("draw %d repeats %s before the pool is exhausted", i, got[i].Name())
			}
			seen[got[i]] = true
			if preferred := !got[i].HasBuff(armorBreak); preferred != (i < k) {
				t.Fatalf("draw %d: preferred=%v with %d preferred units", i, preferred, k)
			}
		}
	})
}

func TestRandom_DrawsWithReplacement(t *testing.T) {
	a := testutil.NewUnit(t, "a", nil)
	c := testutil.NewUnit(t, "c", nil)
	b, _ := testutil.NewBattle(nil, nil, []*model.Unit{a, c}, nil, 1)
	b.Rand = &rng.Fixed{Ints: []int{1, 1, 0}}

	assert.Equal(t, []string{"c", "c", "a", "c"}, names(skill.Random(4)(b)))
}

func TestSelectors_SkipDeadUnits(t *testing.T) {
	dead := testutil.NewUnit(t, "dead", nil)
	dead.TakeDamage(dead.MaxHP())
	alive := testutil.NewUnit(t, "alive", nil)
	b, _ := testutil.NewBattle(nil, nil, []*model.Unit{dead, alive}, nil, 1)

	for name, sel := range map[string]skill.Selector{
		"priority": skill.PriorityRandom(skill.LacksBuff(armorBreak), 3),
		"random":   skill.Random(3),
		"lowest":   skill.LowestStat(model.StatStamina, 2),
		"all":      skill.AllEnemies(),
	} {
		for _, u := range sel(b) {
			assert.Same(t, alive, u, name)
		}
	}

	dead2 := testutil.NewUnit(t, "dead2", nil)
	dead2.TakeDamage(dead2.MaxHP())
	b.Enemies = []*model.Unit{dead, dead2}
	assert.Empty(t, skill.PriorityRandom(skill.LacksBuff(armorBreak), 9)(b))
	assert.Empty(t, skill.Random(9)(b))
}

func TestLowestStat(t *testing.T) {
	tank := testutil.NewUnit(t, "tank", map[model.StatKey]int64{model.StatStamina: 500})
	mage := testutil.NewUnit(t, "mage", map[model.StatKey]int64{model.StatStamina: 100})
	rogue := testutil.NewUnit(t, "rogue", map[model.StatKey]int64{model.StatStamina: 100})
	b, _ := testutil.NewBattle(nil, nil, []*model.Unit{tank, mage, rogue}, nil, 1)

	assert.Equal(t, []string{"mage"}, names(skill.LowestStat(model.StatStamina, 1)(b)))
	assert.Equal(t, []string{"mage", "rogue", "tank"}, names(skill.LowestStat(model.StatStamina, 5)(b)))
}

func TestRepeatAndCritExtra(t *testing.T) {
	attacker := testutil.NewUnit(t, "apollo", nil)
	require.NoError(t, attacker.ReplaceStats(attacker.Stats().With(model.StatCritRate, testutil.D("0.5"))))
	target := testutil.NewUnit(t, "target", nil)
	b, rec := testutil.NewBattle(attacker, []*model.Unit{attacker}, []*model.Unit{target}, nil, 1)
	// hit, miss, hit, hit, hit, hit
	b.Rand = &rng.Fixed{Floats: []float64{0.1, 0.9, 0.2, 0.3, 0.4, 0.0}}

	sel := skill.CritExtra(skill.Repeat(skill.LowestStat(model.StatStamina, 1), 6), 3)
	got := sel(b)
	assert.Len(t, got, 9)
	assert.Contains(t, rec.Lines(), "critical! 3 extra hits")
}

func TestSelfAndAllies(t *testing.T) {
	attacker := testutil.NewUnit(t, "apollo", nil)
	ally := testutil.NewUnit(t, "ally", nil)
	down := testutil.NewUnit(t, "down", nil)
	down.TakeDamage(down.MaxHP())
	b, _ := testutil.NewBattle(attacker, []*model.Unit{attacker, down, ally}, nil, nil, 1)

	assert.Equal(t, []string{"apollo"}, names(skill.Self()(b)))
	assert.Equal(t, []string{"apollo", "ally"}, names(skill.LivingAllies(6)(b)))
	assert.Equal(t, []string{"apollo"}, names(skill.LivingAllies(1)(b)))
}

func TestRespectTaunt(t *testing.T) {
	attacker := testutil.NewUnit(t, "apollo", nil)
	guard := testutil.NewUnit(t, "guard", map[model.StatKey]int64{model.StatMaxHP: 2_000_000})
	mage := testutil.NewUnit(t, "mage", nil)
	b, _ := testutil.NewBattle(attacker, []*model.Unit{attacker}, []*model.Unit{mage, guard}, nil, 1)
	sel := skill.RespectTaunt(skill.Repeat(skill.AllEnemies(), 2), "taunt_sacred")

	assert.Equal(t, []string{"mage", "mage", "guard", "guard"}, names(sel(b)), "no taunt yet")

	guard.AddBuff(&model.BuffInstance{Remaining: 2, Def: &testutil.StubBuff{BuffID: "taunt_sacred", Sacred: true}})
	assert.Equal(t, []string{"guard", "guard", "guard", "guard"}, names(sel(b)))

	guard.SetCurrentHP(testutil.D("10"))
	assert.Equal(t, []string{"mage", "mage", "guard", "guard"}, names(sel(b)), "weakened taunter is ignored")
}
