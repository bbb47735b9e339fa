package skill

import (
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Side picks whose stat a Term reads.
type Side int8

const (
	SideAttacker Side = iota
	SideDefender
)

// Term is coefficient × effective stat of one side.
type Term struct {
	Side Side
	Stat model.StatKey
	Coef decimal.Decimal
}

// Linear returns a formula summing its terms, floored to a whole amount.
func Linear(terms ...Term) Formula {
	return func(attacker, defender *model.Unit) (decimal.Decimal, error) {
		sum := decimal.Zero
		for _, t := range terms {
			u := attacker
			if t.Side == SideDefender {
				u = defender
			}
			sum = sum.Add(u.EffectiveStat(t.Stat).Mul(t.Coef))
		}
		return sum.Floor(), nil
	}
}

// Fixed returns a formula yielding amount.
func Fixed(amount decimal.Decimal) Formula {
	return func(_, _ *model.Unit) (decimal.Decimal, error) {
		return amount, nil
	}
}

// TargetHasBuff is true when the defender carries id.
func TargetHasBuff(id string) Condition {
	return func(_, defender *model.Unit) bool {
		return defender.HasBuff(id)
	}
}

// Not negates c.
func Not(c Condition) Condition {
	return func(attacker, defender *model.Unit) bool {
		return !c(attacker, defender)
	}
}
