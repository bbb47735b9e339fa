package buff

import (
	"fmt"
	"sort"

	"github.com/udisondev/sacredcombat/internal/model"
)

// Spec is the content-side description of one buff definition.
type Spec struct {
	Base   Base
	Kind   string
	Stats  []model.StatMod
	Params map[string]string
}

// Factory builds a definition from a Spec.
type Factory func(spec Spec) (model.BuffDefinition, error)

// kindRegistry maps kind name → factory.
// Populated by init() and by packages providing extra kinds (scripted buffs).
var kindRegistry = map[string]Factory{}

// RegisterKind registers a factory by name. Registering a name twice replaces
// the previous factory.
func RegisterKind(name string, f Factory) {
	kindRegistry[name] = f
}

// Create builds a definition with the factory registered for spec.Kind.
// Unknown kinds and malformed params are ConfigErrors.
func Create(spec Spec) (model.BuffDefinition, error) {
	factory, ok := kindRegistry[spec.Kind]
	if !ok {
		return nil, &model.ConfigError{
			Field: "buff " + spec.Base.ID(),
			Err:   fmt.Errorf("unknown buff kind: %s", spec.Kind),
		}
	}
	def, err := factory(spec)
	if err != nil {
		return nil, &model.ConfigError{Field: "buff " + spec.Base.ID(), Err: err}
	}
	return def, nil
}

// Kinds returns the registered kind names, sorted.
func Kinds() []string {
	out := make([]string, 0, len(kindRegistry))
	for k := range kindRegistry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterKind("marker", NewMarker)
	RegisterKind("stat_up", NewStatUp)
	RegisterKind("hp_scaled_cut", NewHPScaledCut)
	RegisterKind("damage_taken_scale", NewDamageTakenScale)
	RegisterKind("damage_dealt_scale", NewDamageDealtScale)
	RegisterKind("guard", NewGuard)
	RegisterKind("negate", NewNegate)
	RegisterKind("turn_cleanse", NewTurnCleanse)
	RegisterKind("debuff_ward", NewDebuffWard)
}
