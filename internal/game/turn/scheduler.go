// Package turn drives the per-turn buff lifecycle around skill resolution.
package turn

import (
	"log/slog"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Scheduler fires turn-start hooks and ticks buff durations.
// It holds no state; the turn number lives on the battle.
type Scheduler struct{}

// StartTurn fires unit's OnTurnStart hooks in dispatch order. Hook failures
// are written to the battle as warnings and returned.
func (Scheduler) StartTurn(b *model.Battle, unit *model.Unit) []error {
	if unit == nil || !unit.IsAlive() {
		return nil
	}
	errs := model.FireTurnStart(b, unit)
	for _, err := range errs {
		b.Warn(err)
	}
	return errs
}

// EndTurn decrements every instance on unit and force-removes the expired
// ones, sacred buffs included. Returns the removed ids in dispatch order.
func (Scheduler) EndTurn(unit *model.Unit) []string {
	if unit == nil {
		return nil
	}
	var expired []string
	for _, inst := range unit.Buffs() {
		inst.Decrement()
		if !inst.Expired() {
			continue
		}
		if unit.ForceRemoveBuff(inst.ID()) {
			expired = append(expired, inst.ID())
		}
	}
	if len(expired) > 0 {
		slog.Debug("buffs expired",
			"unit", unit.Name(),
			"buffs", expired)
	}
	return expired
}

// Advance moves the battle to the next turn and returns its number.
func (Scheduler) Advance(b *model.Battle) int {
	b.Turn++
	return b.Turn
}
