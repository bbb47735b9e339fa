package buff

import "github.com/udisondev/sacredcombat/internal/model"

// Marker is a buff with no hooks. Other logic checks for its presence
// (taunt redirection, sin tags used by target selection).
type Marker struct {
	Base
}

func NewMarker(spec Spec) (model.BuffDefinition, error) {
	return &Marker{Base: spec.Base}, nil
}

// StatUp carries static stat modifiers only.
// Params: "per_turn" (bool) multiplies every modifier by the remaining duration.
type StatUp struct {
	Base
	statMods
}

func NewStatUp(spec Spec) (model.BuffDefinition, error) {
	perTurn, err := paramBool(spec.Params, "per_turn", false)
	if err != nil {
		return nil, err
	}
	return &StatUp{Base: spec.Base, statMods: statMods{mods: spec.Stats, perTurn: perTurn}}, nil
}
