package skill

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/rng"
)

// Selector picks the ordered target sequence of a skill. Entries may repeat
// (multi-hit) and an empty result is valid. Selectors only consider living
// units at call time.
type Selector func(b *model.Battle) []*model.Unit

// PriorityRandom draws count enemies. Living enemies matching prefer are
// shuffled ahead of the shuffled rest; draw i takes position i while the
// pool lasts, later draws sample the pool with replacement. Every preferred
// enemy is therefore hit before any other one.
func PriorityRandom(prefer func(*model.Unit) bool, count int) Selector {
	return func(b *model.Battle) []*model.Unit {
		pool := b.LivingEnemies()
		if len(pool) == 0 || count <= 0 {
			return nil
		}
		var preferred, fallback []*model.Unit
		for _, u := range pool {
			if prefer(u) {
				preferred = append(preferred, u)
			} else {
				fallback = append(fallback, u)
			}
		}
		shuffle(b.Rand, preferred)
		shuffle(b.Rand, fallback)
		order := append(preferred, fallback...)

		out := make([]*model.Unit, count)
		for i := range out {
			if i < len(order) {
				out[i] = order[i]
				continue
			}
			out[i] = order[b.Rand.IntN(len(order))]
		}
		return out
	}
}

// LacksBuff is a PriorityRandom predicate preferring units without id.
func LacksBuff(id string) func(*model.Unit) bool {
	return func(u *model.Unit) bool {
		return !u.HasBuff(id)
	}
}

// Random draws count living enemies with replacement.
func Random(count int) Selector {
	return func(b *model.Battle) []*model.Unit {
		pool := b.LivingEnemies()
		if len(pool) == 0 || count <= 0 {
			return nil
		}
		out := make([]*model.Unit, count)
		for i := range out {
			out[i] = pool[b.Rand.IntN(len(pool))]
		}
		return out
	}
}

// LowestStat returns the n living enemies with the lowest effective stat,
// ascending. Ties keep roster order.
func LowestStat(key model.StatKey, n int) Selector {
	return func(b *model.Battle) []*model.Unit {
		pool := b.LivingEnemies()
		values := make(map[*model.Unit]decimal.Decimal, len(pool))
		for _, u := range pool {
			values[u] = u.EffectiveStat(key)
		}
		slices.SortStableFunc(pool, func(a, c *model.Unit) int {
			return values[a].Cmp(values[c])
		})
		return pool[:min(n, len(pool))]
	}
}

// Self targets the acting unit.
func Self() Selector {
	return func(b *model.Battle) []*model.Unit {
		if b.Attacker == nil || !b.Attacker.IsAlive() {
			return nil
		}
		return []*model.Unit{b.Attacker}
	}
}

// AllEnemies targets every living enemy once, in roster order.
func AllEnemies() Selector {
	return func(b *model.Battle) []*model.Unit {
		return b.LivingEnemies()
	}
}

// LivingAllies targets up to n living allies in roster order, the attacker
// included.
func LivingAllies(n int) Selector {
	return func(b *model.Battle) []*model.Unit {
		pool := b.LivingAllies()
		return pool[:min(n, len(pool))]
	}
}

// Repeat hits every entry of sel times times in a row.
func Repeat(sel Selector, times int) Selector {
	return func(b *model.Battle) []*model.Unit {
		base := sel(b)
		out := make([]*model.Unit, 0, len(base)*max(times, 0))
		for _, u := range base {
			for range times {
				out = append(out, u)
			}
		}
		return out
	}
}

// CritExtra rolls the attacker's crit_rate (a fraction) once per entry of
// sel; every success adds one more hit on that entry, up to maxExtra extra
// hits in total.
func CritExtra(sel Selector, maxExtra int) Selector {
	return func(b *model.Battle) []*model.Unit {
		base := sel(b)
		if b.Attacker == nil || maxExtra <= 0 {
			return base
		}
		p := b.Attacker.EffectiveStat(model.StatCritRate).InexactFloat64()
		out := make([]*model.Unit, 0, len(base)+maxExtra)
		extra := 0
		for _, u := range base {
			out = append(out, u)
			if extra < maxExtra && b.Rand.Float64() < p {
				out = append(out, u)
				extra++
			}
		}
		if extra > 0 {
			b.Logf("critical! %d extra hits", extra)
		}
		return out
	}
}

// RespectTaunt redirects every entry of sel to a living enemy holding
// tauntID whose health exceeds the attacker's. The first such enemy in roster
// order wins.
func RespectTaunt(sel Selector, tauntID string) Selector {
	return func(b *model.Battle) []*model.Unit {
		base := sel(b)
		if len(base) == 0 || b.Attacker == nil {
			return base
		}
		var taunter *model.Unit
		for _, u := range b.LivingEnemies() {
			if u.HasBuff(tauntID) && u.CurrentHP().GreaterThan(b.Attacker.CurrentHP()) {
				taunter = u
				break
			}
		}
		if taunter == nil {
			return base
		}
		b.Logf("%s draws every attack", taunter.Name())
		out := make([]*model.Unit, len(base))
		for i := range out {
			out[i] = taunter
		}
		return out
	}
}

// shuffle is Fisher-Yates over src.
func shuffle(src rng.Source, units []*model.Unit) {
	for i := len(units) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		units[i], units[j] = units[j], units[i]
	}
}
