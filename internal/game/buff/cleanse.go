package buff

import (
	"strings"

	"github.com/udisondev/sacredcombat/internal/model"
)

// TurnCleanse removes debuffs from its owner at turn start.
// Params: "count" (int, default 1).
type TurnCleanse struct {
	Base
	statMods
	count int
}

func NewTurnCleanse(spec Spec) (model.BuffDefinition, error) {
	count, err := paramInt(spec.Params, "count", 1)
	if err != nil {
		return nil, err
	}
	return &TurnCleanse{Base: spec.Base, statMods: statMods{mods: spec.Stats}, count: count}, nil
}

func (c *TurnCleanse) OnTurnStart(hc *model.HookContext) error {
	removed := hc.Cleanse(c.count)
	if len(removed) > 0 {
		hc.Logf("%s cleanses %s from %s", c.Name(), strings.Join(removed, ", "), hc.Owner.Name())
	}
	return nil
}

// DebuffWard blocks incoming debuffs, paying "cost" turns of duration per
// block. The ward is removed once its duration is exhausted.
// Params: "cost" (int, default 1).
type DebuffWard struct {
	Base
	statMods
	cost int
}

func NewDebuffWard(spec Spec) (model.BuffDefinition, error) {
	cost, err := paramInt(spec.Params, "cost", 1)
	if err != nil {
		return nil, err
	}
	return &DebuffWard{Base: spec.Base, statMods: statMods{mods: spec.Stats}, cost: cost}, nil
}

func (w *DebuffWard) GuardDebuff(hc *model.HookContext, incoming model.BuffDefinition) (bool, error) {
	hc.Instance.Remaining -= w.cost
	hc.Logf("%s blocks %s on %s", w.Name(), incoming.Name(), hc.Owner.Name())
	if hc.Instance.Expired() {
		hc.ForceRemove(w.ID())
	}
	return true, nil
}
