package skill

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Resolution records what one skill invocation did.
type Resolution struct {
	SkillID   string   `json:"skill_id"`
	SkillName string   `json:"skill_name"`
	Caster    string   `json:"caster"`
	Turn      int      `json:"turn"`
	Targets   []string `json:"targets"`
	Hits      []Hit    `json:"hits"`
	// Reflected holds damage buff hooks bounced back onto the caster side.
	Reflected []Hit `json:"reflected,omitempty"`

	BuffsApplied    []BuffChange `json:"buffs_applied"`
	BuffsRemoved    []BuffChange `json:"buffs_removed"`
	RemovalsRefused []BuffChange `json:"removals_refused,omitempty"`

	Warnings []Warning `json:"warnings"`
}

// Hit is one damage or heal outcome.
type Hit struct {
	Target string     `json:"target"`
	Effect int        `json:"effect"`
	Kind   EffectKind `json:"kind"`
	// Source is set on reflected hits: the unit whose buff reflected.
	Source string `json:"source,omitempty"`
	// Raw is the formula output, Final the amount after both buff chains.
	Raw   decimal.Decimal `json:"raw"`
	Final decimal.Decimal `json:"final"`
	// Applied is the health actually removed (Final capped by remaining HP).
	Applied decimal.Decimal `json:"applied"`
	Negated bool            `json:"negated"`
	Healed  decimal.Decimal `json:"healed"`
}

// BuffChange names a buff attached to or removed from a unit.
type BuffChange struct {
	Unit     string `json:"unit"`
	BuffID   string `json:"buff_id"`
	Duration int    `json:"duration,omitempty"`
}

// WarningKind classifies a recovered failure.
type WarningKind string

const (
	WarningContent WarningKind = "content"
	WarningState   WarningKind = "state"
)

// Warning is a failure the resolver recovered from.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`

	err error
}

// Err returns the underlying error; nil for decoded records.
func (w Warning) Err() error {
	return w.err
}

func newWarning(err error) Warning {
	kind := WarningContent
	var se *model.StateError
	if errors.As(err, &se) {
		kind = WarningState
	}
	return Warning{Kind: kind, Message: err.Error(), err: err}
}

// TotalDamage sums the health the skill removed from its targets; reflected
// damage is not counted.
func (r *Resolution) TotalDamage() decimal.Decimal {
	sum := decimal.Zero
	for _, h := range r.Hits {
		sum = sum.Add(h.Applied)
	}
	return sum
}

// DamageTo sums the health removed from target, reflected damage included.
func (r *Resolution) DamageTo(target string) decimal.Decimal {
	sum := decimal.Zero
	for _, hits := range [][]Hit{r.Hits, r.Reflected} {
		for _, h := range hits {
			if h.Target == target {
				sum = sum.Add(h.Applied)
			}
		}
	}
	return sum
}
