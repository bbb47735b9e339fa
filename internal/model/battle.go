package model

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/rng"
)

// BuffCatalog resolves buff definitions by id.
type BuffCatalog interface {
	Buff(id string) (BuffDefinition, bool)
}

// BuffTable is a map-backed BuffCatalog.
type BuffTable map[string]BuffDefinition

// Buff implements BuffCatalog.
func (t BuffTable) Buff(id string) (BuffDefinition, bool) {
	def, ok := t[id]
	return def, ok
}

// Journal observes state changes buff hooks make on their own: attachments,
// forced removals and reflected damage. The skill resolver installs one for
// the duration of an invocation so those changes land in its record.
type Journal interface {
	BuffAttached(unit *Unit, id string, duration int)
	BuffDetached(unit *Unit, id string)
	DamageReflected(from, to *Unit, amount, applied decimal.Decimal)
}

// Battle is the turn-scoped context handed to selectors, effects and hooks.
// Allies contains the acting unit's side (including the attacker); Enemies the
// opposing side.
type Battle struct {
	Turn     int
	Attacker *Unit
	Allies   []*Unit
	Enemies  []*Unit
	Log      LogSink
	Rand     rng.Source
	Buffs    BuffCatalog
	// Journal is optional; nil drops hook-made changes.
	Journal Journal
}

// Logf formats a line into the log sink.
func (b *Battle) Logf(format string, args ...any) {
	if b.Log == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if err := Guard(func() error { b.Log.Log(msg); return nil }); err != nil {
		slog.Warn("battle log sink failed", "turn", b.Turn, "err", err)
	}
}

// Warn records a non-fatal failure in the battle log and in slog.
func (b *Battle) Warn(err error) {
	b.Logf("warning: %v", err)
	slog.Warn("combat warning", "turn", b.Turn, "err", err)
}

// LivingEnemies returns enemies with health above zero, in roster order.
func (b *Battle) LivingEnemies() []*Unit {
	return Living(b.Enemies)
}

// LivingAllies returns allies with health above zero, in roster order.
func (b *Battle) LivingAllies() []*Unit {
	return Living(b.Allies)
}

// OpponentsOf returns the roster opposing u.
func (b *Battle) OpponentsOf(u *Unit) []*Unit {
	for _, a := range b.Allies {
		if a == u {
			return b.Enemies
		}
	}
	return b.Allies
}

// Living filters units down to the ones still alive.
func Living(units []*Unit) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u != nil && u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

func (b *Battle) noteAttached(u *Unit, id string, duration int) {
	if b != nil && b.Journal != nil {
		b.Journal.BuffAttached(u, id, duration)
	}
}

func (b *Battle) noteDetached(u *Unit, id string) {
	if b != nil && b.Journal != nil {
		b.Journal.BuffDetached(u, id)
	}
}

func (b *Battle) noteReflected(from, to *Unit, amount, applied decimal.Decimal) {
	if b != nil && b.Journal != nil {
		b.Journal.DamageReflected(from, to, amount, applied)
	}
}
