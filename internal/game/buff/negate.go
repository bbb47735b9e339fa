package buff

import (
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Negate nullifies incoming damage. Each negation costs "cost" turns of the
// instance's duration; once exhausted the instance is removed after the hit.
//
// Params: "cost" (int, default 1; 0 makes the negation free).
type Negate struct {
	Base
	statMods
	cost int
}

func NewNegate(spec Spec) (model.BuffDefinition, error) {
	cost, err := paramInt(spec.Params, "cost", 1)
	if err != nil {
		return nil, err
	}
	return &Negate{Base: spec.Base, statMods: statMods{mods: spec.Stats}, cost: cost}, nil
}

func (n *Negate) ModifyDamageTaken(hc *model.HookContext, _ decimal.Decimal) (decimal.Decimal, error) {
	hc.Instance.Remaining -= n.cost
	hc.Logf("%s: damage to %s negated", n.Name(), hc.Owner.Name())
	return decimal.Zero, nil
}

func (n *Negate) OnHitReceived(hc *model.HookContext) error {
	if hc.Instance.Expired() && hc.ForceRemove(n.ID()) {
		hc.Logf("%s fades from %s", n.Name(), hc.Owner.Name())
	}
	return nil
}
