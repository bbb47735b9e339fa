package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// StubBuff is a configurable buff definition that records hook invocations.
// Only the hooks backed by a non-nil func report the capability.
type StubBuff struct {
	BuffID    string
	Sacred    bool
	Removable bool
	Debuff    bool

	Taken   func(hc *model.HookContext, d decimal.Decimal) (decimal.Decimal, error)
	Dealt   func(hc *model.HookContext, d decimal.Decimal) (decimal.Decimal, error)
	Mods    []model.StatMod
	Applied func(hc *model.HookContext, duration int) error
	Hit     func(hc *model.HookContext) error
	Turn    func(hc *model.HookContext) error
	GuardFn func(hc *model.HookContext, incoming model.BuffDefinition) (bool, error)

	Calls map[model.Capability]int
}

func (s *StubBuff) ID() string        { return s.BuffID }
func (s *StubBuff) Name() string      { return s.BuffID }
func (s *StubBuff) IsSacred() bool    { return s.Sacred }
func (s *StubBuff) IsRemovable() bool { return s.Removable }
func (s *StubBuff) IsDebuff() bool    { return s.Debuff }

// Has implements model.CapabilityReporter.
func (s *StubBuff) Has(c model.Capability) bool {
	switch c {
	case model.CapDamageTaken:
		return s.Taken != nil
	case model.CapDamageDealt:
		return s.Dealt != nil
	case model.CapStatMods:
		return len(s.Mods) > 0
	case model.CapApplied:
		return s.Applied != nil
	case model.CapHitReceived:
		return s.Hit != nil
	case model.CapTurnStart:
		return s.Turn != nil
	case model.CapDebuffGuard:
		return s.GuardFn != nil
	}
	return false
}

func (s *StubBuff) record(c model.Capability) {
	if s.Calls == nil {
		s.Calls = make(map[model.Capability]int)
	}
	s.Calls[c]++
}

func (s *StubBuff) ModifyDamageTaken(hc *model.HookContext, d decimal.Decimal) (decimal.Decimal, error) {
	s.record(model.CapDamageTaken)
	return s.Taken(hc, d)
}

func (s *StubBuff) ModifyDamageDealt(hc *model.HookContext, d decimal.Decimal) (decimal.Decimal, error) {
	s.record(model.CapDamageDealt)
	return s.Dealt(hc, d)
}

func (s *StubBuff) StatMods(_ *model.Unit, _ int) []model.StatMod {
	s.record(model.CapStatMods)
	return s.Mods
}

func (s *StubBuff) OnApplied(hc *model.HookContext, duration int) error {
	s.record(model.CapApplied)
	return s.Applied(hc, duration)
}

func (s *StubBuff) OnHitReceived(hc *model.HookContext) error {
	s.record(model.CapHitReceived)
	return s.Hit(hc)
}

func (s *StubBuff) OnTurnStart(hc *model.HookContext) error {
	s.record(model.CapTurnStart)
	return s.Turn(hc)
}

func (s *StubBuff) GuardDebuff(hc *model.HookContext, incoming model.BuffDefinition) (bool, error) {
	s.record(model.CapDebuffGuard)
	return s.GuardFn(hc, incoming)
}

// TotalCalls sums recorded hook invocations.
func (s *StubBuff) TotalCalls() int {
	n := 0
	for _, v := range s.Calls {
		n += v
	}
	return n
}

// Scale returns a Taken/Dealt func multiplying by factor.
func Scale(factor string) func(*model.HookContext, decimal.Decimal) (decimal.Decimal, error) {
	f := D(factor)
	return func(_ *model.HookContext, d decimal.Decimal) (decimal.Decimal, error) {
		return d.Mul(f), nil
	}
}
