package model

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"
)

// Unit is a battle participant: identity, base stats, current health and the
// set of attached buffs (at most one instance per buff id).
//
// Unit is not safe for concurrent use. A battle is resolved by one goroutine
// and parallel simulations build their own units.
type Unit struct {
	name      string
	stats     StatBlock
	currentHP decimal.Decimal

	buffs   map[string]*BuffInstance
	nextSeq uint64
}

// NewUnit creates a unit at full effective health.
// An incomplete StatBlock is a ConfigError.
func NewUnit(name string, stats StatBlock) (*Unit, error) {
	if name == "" {
		return nil, &ConfigError{Field: "name", Err: errors.New("unit name is empty")}
	}
	if !stats.Complete() {
		return nil, &ConfigError{Field: "stats", Err: ErrMissingStat}
	}
	u := &Unit{
		name:  name,
		stats: stats,
		buffs: make(map[string]*BuffInstance),
	}
	u.currentHP = u.MaxHP()
	return u, nil
}

// Clone returns an isolated copy: same stats and health, with every buff
// instance copied. Definitions are shared. A self-applied instance keeps the
// clone as its source; sources outside the unit are cleared so the copy holds
// no pointer into the original roster.
func (u *Unit) Clone() *Unit {
	c := &Unit{
		name:      u.name,
		stats:     u.stats,
		currentHP: u.currentHP,
		buffs:     make(map[string]*BuffInstance, len(u.buffs)),
		nextSeq:   u.nextSeq,
	}
	for id, inst := range u.buffs {
		cp := *inst
		cp.Owner = c
		if inst.Source == u {
			cp.Source = c
		} else {
			cp.Source = nil
		}
		c.buffs[id] = &cp
	}
	return c
}

// Name returns the unit name.
func (u *Unit) Name() string {
	return u.name
}

// Stats returns the base stat block.
func (u *Unit) Stats() StatBlock {
	return u.stats
}

// ReplaceStats swaps the base stat block wholesale and re-clamps health.
func (u *Unit) ReplaceStats(stats StatBlock) error {
	if !stats.Complete() {
		return &ConfigError{Field: "stats", Err: ErrMissingStat}
	}
	u.stats = stats
	u.clampHP()
	return nil
}

// BaseStat returns the unmodified stat value.
func (u *Unit) BaseStat(k StatKey) decimal.Decimal {
	return u.stats.Get(k)
}

// EffectiveStat returns the base value with every attached buff's stat
// modifiers folded in (percentages additive, then flat deltas).
func (u *Unit) EffectiveStat(k StatKey) decimal.Decimal {
	return FoldStat(u.stats.Get(k), k, u.StatMods())
}

// StatMods collects the stat modifiers of all attached buffs in dispatch order.
func (u *Unit) StatMods() []StatMod {
	var mods []StatMod
	for _, inst := range u.Buffs() {
		p, ok := hookOf[StatModifierProvider](inst.Def, CapStatMods)
		if !ok {
			continue
		}
		err := Guard(func() error {
			mods = append(mods, p.StatMods(u, inst.Remaining)...)
			return nil
		})
		if err != nil {
			slog.Warn("stat modifier hook failed",
				"unit", u.name,
				"buff", inst.ID(),
				"err", err)
		}
	}
	return mods
}

// MaxHP returns the effective max health.
func (u *Unit) MaxHP() decimal.Decimal {
	return u.EffectiveStat(StatMaxHP)
}

// CurrentHP returns the current health.
func (u *Unit) CurrentHP() decimal.Decimal {
	return u.currentHP
}

// SetCurrentHP sets current health, clamped to [0, MaxHP].
func (u *Unit) SetCurrentHP(hp decimal.Decimal) {
	u.currentHP = hp
	u.clampHP()
}

// HPRatio returns current / max health in [0, 1]; zero when max health is zero.
func (u *Unit) HPRatio() decimal.Decimal {
	maxHP := u.MaxHP()
	if !maxHP.IsPositive() {
		return decimal.Zero
	}
	return u.currentHP.Div(maxHP)
}

// IsAlive reports whether current health is above zero.
func (u *Unit) IsAlive() bool {
	return u.currentHP.IsPositive()
}

// TakeDamage subtracts amount, flooring health at zero, and returns the health
// actually removed. Negative amounts are treated as zero.
func (u *Unit) TakeDamage(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	before := u.currentHP
	u.currentHP = decimal.Max(u.currentHP.Sub(amount), decimal.Zero)
	return before.Sub(u.currentHP)
}

// Heal adds amount, capping health at MaxHP, and returns the health actually
// restored. Negative amounts are treated as zero.
func (u *Unit) Heal(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	before := u.currentHP
	u.currentHP = decimal.Min(u.currentHP.Add(amount), u.MaxHP())
	if u.currentHP.LessThan(before) {
		u.currentHP = before
	}
	return u.currentHP.Sub(before)
}

// AddBuff attaches inst, replacing any instance with the same id. The new
// instance takes the next dispatch position. AddBuff does not fire hooks; see
// ApplyBuff.
func (u *Unit) AddBuff(inst *BuffInstance) {
	inst.Owner = u
	inst.seq = u.nextSeq
	u.nextSeq++
	u.buffs[inst.ID()] = inst
	u.clampHP()
}

// RemoveBuff is the ordinary removal path: it refuses buffs that are not
// removable or are sacred. Returns true if an instance was removed.
func (u *Unit) RemoveBuff(id string) bool {
	inst, ok := u.buffs[id]
	if !ok || !inst.Def.IsRemovable() || inst.Def.IsSacred() {
		return false
	}
	return u.ForceRemoveBuff(id)
}

// ForceRemoveBuff removes the instance regardless of its flags. It backs
// expiry and sacred dispel.
func (u *Unit) ForceRemoveBuff(id string) bool {
	if _, ok := u.buffs[id]; !ok {
		return false
	}
	delete(u.buffs, id)
	u.clampHP()
	return true
}

// HasBuff reports whether an instance with id is attached.
func (u *Unit) HasBuff(id string) bool {
	_, ok := u.buffs[id]
	return ok
}

// Buff returns the attached instance for id.
func (u *Unit) Buff(id string) (*BuffInstance, bool) {
	inst, ok := u.buffs[id]
	return inst, ok
}

// Buffs returns attached instances in dispatch order: attachment order, ties
// broken by buff id.
func (u *Unit) Buffs() []*BuffInstance {
	out := make([]*BuffInstance, 0, len(u.buffs))
	for _, inst := range u.buffs {
		out = append(out, inst)
	}
	slices.SortFunc(out, func(a, b *BuffInstance) int {
		if c := cmp.Compare(a.seq, b.seq); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

// Cleanse removes up to n ordinary-removable debuffs in dispatch order and
// returns their ids.
func (u *Unit) Cleanse(n int) []string {
	var removed []string
	for _, inst := range u.Buffs() {
		if len(removed) >= n {
			break
		}
		if !inst.Def.IsDebuff() {
			continue
		}
		if u.RemoveBuff(inst.ID()) {
			removed = append(removed, inst.ID())
		}
	}
	return removed
}

func (u *Unit) clampHP() {
	if u.currentHP.IsNegative() {
		u.currentHP = decimal.Zero
	}
	if maxHP := u.MaxHP(); u.currentHP.GreaterThan(maxHP) {
		u.currentHP = decimal.Max(maxHP, decimal.Zero)
	}
}
