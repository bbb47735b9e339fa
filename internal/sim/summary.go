package sim

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoRuns is returned by Summary.WinRate for an empty batch.
var ErrNoRuns = errors.New("no runs")

// Summary aggregates a batch of runs.
type Summary struct {
	Runs           int
	Wins           int
	AttackerDeaths int
	Kills          int
	Warnings       int

	TotalDamage decimal.Decimal
	MeanDamage  decimal.Decimal
	MinDamage   decimal.Decimal
	MaxDamage   decimal.Decimal
	MeanTurns   decimal.Decimal
}

// Summarize folds results in order.
func Summarize(results []RunResult) Summary {
	s := Summary{
		Runs:        len(results),
		TotalDamage: decimal.Zero,
		MeanDamage:  decimal.Zero,
		MinDamage:   decimal.Zero,
		MaxDamage:   decimal.Zero,
		MeanTurns:   decimal.Zero,
	}
	if len(results) == 0 {
		return s
	}

	turns := 0
	for i, r := range results {
		if r.Won {
			s.Wins++
		}
		if !r.AttackerAlive {
			s.AttackerDeaths++
		}
		s.Kills += r.Kills
		s.Warnings += r.Warnings
		turns += r.Turns
		s.TotalDamage = s.TotalDamage.Add(r.Damage)
		if i == 0 || r.Damage.LessThan(s.MinDamage) {
			s.MinDamage = r.Damage
		}
		if i == 0 || r.Damage.GreaterThan(s.MaxDamage) {
			s.MaxDamage = r.Damage
		}
	}
	n := decimal.NewFromInt(int64(len(results)))
	s.MeanDamage = s.TotalDamage.Div(n)
	s.MeanTurns = decimal.NewFromInt(int64(turns)).Div(n)
	return s
}

// WinRate returns Wins/Runs.
func (s Summary) WinRate() (decimal.Decimal, error) {
	if s.Runs == 0 {
		return decimal.Zero, ErrNoRuns
	}
	return decimal.NewFromInt(int64(s.Wins)).Div(decimal.NewFromInt(int64(s.Runs))), nil
}

func (s Summary) String() string {
	rate := "n/a"
	if r, err := s.WinRate(); err == nil {
		rate = r.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
	}
	return fmt.Sprintf(
		"runs=%d wins=%d (%s) attacker_deaths=%d kills=%d mean_damage=%s min=%s max=%s mean_turns=%s warnings=%d",
		s.Runs, s.Wins, rate, s.AttackerDeaths, s.Kills,
		s.MeanDamage.StringFixed(0), s.MinDamage, s.MaxDamage, s.MeanTurns.StringFixed(2), s.Warnings,
	)
}
