package testutil

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/rng"
)

// Fixtures holds reusable stat values for tests.
var Fixtures = struct {
	MaxHP   int64
	Agility int64
	Attack  int64
	Stamina int64
}{
	MaxHP:   1_000_000,
	Agility: 100_000,
	Attack:  100_000,
	Stamina: 100_000,
}

// Stats builds a complete StatBlock from the fixture defaults with the given
// overrides applied.
func Stats(tb testing.TB, overrides map[model.StatKey]int64) model.StatBlock {
	tb.Helper()

	values := make(map[model.StatKey]decimal.Decimal, len(model.StatKeys))
	for _, k := range model.StatKeys {
		values[k] = decimal.Zero
	}
	values[model.StatMaxHP] = decimal.NewFromInt(Fixtures.MaxHP)
	values[model.StatAgility] = decimal.NewFromInt(Fixtures.Agility)
	values[model.StatAttackMin] = decimal.NewFromInt(Fixtures.Attack)
	values[model.StatAttackMax] = decimal.NewFromInt(Fixtures.Attack)
	values[model.StatStamina] = decimal.NewFromInt(Fixtures.Stamina)
	for k, v := range overrides {
		values[k] = decimal.NewFromInt(v)
	}

	block, err := model.NewStatBlock(values)
	if err != nil {
		tb.Fatalf("building stat block: %v", err)
	}
	return block
}

// NewUnit creates a unit from Stats(overrides).
func NewUnit(tb testing.TB, name string, overrides map[model.StatKey]int64) *model.Unit {
	tb.Helper()

	u, err := model.NewUnit(name, Stats(tb, overrides))
	if err != nil {
		tb.Fatalf("creating unit %q: %v", name, err)
	}
	return u
}

// NewBattle builds a battle context with a recorder log, a seeded source and
// the given buff catalog (may be nil).
func NewBattle(attacker *model.Unit, allies, enemies []*model.Unit, buffs model.BuffCatalog, seed uint64) (*model.Battle, *model.Recorder) {
	rec := &model.Recorder{}
	if buffs == nil {
		buffs = model.BuffTable{}
	}
	return &model.Battle{
		Turn:     1,
		Attacker: attacker,
		Allies:   allies,
		Enemies:  enemies,
		Log:      rec,
		Rand:     rng.New(seed),
		Buffs:    buffs,
	}, rec
}

// D parses a decimal literal and panics on malformed input.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
