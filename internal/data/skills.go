package data

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/game/skill"
	"github.com/udisondev/sacredcombat/internal/model"
)

func (cat *Catalog) buildSkill(doc SkillDoc) (*skill.Definition, error) {
	field := "skill " + doc.ID
	if doc.ID == "" {
		return nil, configErr("skill", errors.New("missing id"))
	}

	targets, err := cat.buildSelector(doc.Targets)
	if err != nil {
		return nil, configErr(field+" targets", err)
	}
	pre, err := cat.buildActions(doc.Pre)
	if err != nil {
		return nil, configErr(field+" pre", err)
	}
	post, err := cat.buildActions(doc.Post)
	if err != nil {
		return nil, configErr(field+" post", err)
	}

	effects := make([]skill.Effect, 0, len(doc.Effects))
	for i, e := range doc.Effects {
		eff, err := cat.buildEffect(e)
		if err != nil {
			return nil, configErr(fmt.Sprintf("%s effect %d", field, i), err)
		}
		effects = append(effects, eff)
	}

	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	return &skill.Definition{
		ID:      doc.ID,
		Name:    name,
		Targets: targets,
		Pre:     pre,
		Effects: effects,
		Post:    post,
	}, nil
}

func (cat *Catalog) buildSelector(doc SelectorDoc) (skill.Selector, error) {
	var sel skill.Selector
	switch doc.Kind {
	case "priority_random":
		if doc.PreferLacks == "" {
			return nil, errors.New("priority_random needs prefer_lacks")
		}
		sel = skill.PriorityRandom(skill.LacksBuff(doc.PreferLacks), doc.Count)
	case "random":
		sel = skill.Random(doc.Count)
	case "lowest_stat":
		key := model.StatKey(doc.Stat)
		if !key.IsValid() {
			return nil, fmt.Errorf("unknown stat %q", doc.Stat)
		}
		sel = skill.LowestStat(key, max(doc.Count, 1))
	case "self":
		sel = skill.Self()
	case "all_enemies":
		sel = skill.AllEnemies()
	case "living_allies":
		sel = skill.LivingAllies(doc.Count)
	default:
		return nil, fmt.Errorf("unknown selector kind %q", doc.Kind)
	}

	if doc.Repeat > 1 {
		sel = skill.Repeat(sel, doc.Repeat)
	}
	if doc.CritExtra > 0 {
		sel = skill.CritExtra(sel, doc.CritExtra)
	}
	if doc.Taunt != "" {
		if err := cat.requireBuff(doc.Taunt); err != nil {
			return nil, err
		}
		sel = skill.RespectTaunt(sel, doc.Taunt)
	}
	return sel, nil
}

func (cat *Catalog) buildActions(docs []ActionDoc) (skill.Action, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	actions := make([]skill.Action, 0, len(docs))
	for i, d := range docs {
		a, err := cat.buildAction(d)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	if len(actions) == 1 {
		return actions[0], nil
	}
	return skill.Sequence(actions...), nil
}

func (cat *Catalog) buildAction(d ActionDoc) (skill.Action, error) {
	switch d.Kind {
	case "cleanse_self":
		return skill.CleanseSelf(d.Count), nil
	case "self_buff":
		for _, id := range d.Buffs {
			if err := cat.requireBuff(id); err != nil {
				return nil, err
			}
		}
		return skill.SelfBuff(d.Duration, d.Buffs...), nil
	case "ally_buff":
		if err := cat.requireBuff(d.Buff); err != nil {
			return nil, err
		}
		return skill.AllyBuff(skill.LivingAllies(d.Count), d.Buff, d.Duration), nil
	case "announce":
		return skill.Announce(d.Message), nil
	}
	return nil, fmt.Errorf("unknown action kind %q", d.Kind)
}

func (cat *Catalog) buildEffect(d EffectDoc) (skill.Effect, error) {
	kind, err := skill.ParseEffectKind(d.Kind)
	if err != nil {
		return skill.Effect{}, err
	}
	eff := skill.Effect{
		Kind:        kind,
		BuffID:      d.Buff,
		Duration:    d.Duration,
		Probability: d.Probability,
	}
	if d.Probability < 0 || d.Probability > 1 {
		return skill.Effect{}, fmt.Errorf("probability %v outside [0, 1]", d.Probability)
	}

	switch kind {
	case skill.KindDamage, skill.KindHeal:
		if len(d.Formula) == 0 {
			return skill.Effect{}, errors.New("missing formula")
		}
		terms := make([]skill.Term, 0, len(d.Formula))
		for _, t := range d.Formula {
			term, err := buildTerm(t)
			if err != nil {
				return skill.Effect{}, err
			}
			terms = append(terms, term)
		}
		eff.Formula = skill.Linear(terms...)
	default:
		if err := cat.requireBuff(d.Buff); err != nil {
			return skill.Effect{}, err
		}
	}

	if d.When != nil {
		switch {
		case d.When.TargetHas != "" && d.When.TargetLacks == "":
			eff.Condition = skill.TargetHasBuff(d.When.TargetHas)
		case d.When.TargetLacks != "" && d.When.TargetHas == "":
			eff.Condition = skill.Not(skill.TargetHasBuff(d.When.TargetLacks))
		default:
			return skill.Effect{}, errors.New("when needs exactly one of target_has, target_lacks")
		}
	}
	return eff, nil
}

func buildTerm(t TermDoc) (skill.Term, error) {
	key := model.StatKey(t.Stat)
	if !key.IsValid() {
		return skill.Term{}, fmt.Errorf("formula: unknown stat %q", t.Stat)
	}
	coef, err := decimal.NewFromString(t.Coef)
	if err != nil {
		return skill.Term{}, fmt.Errorf("formula %s coef: %w", t.Stat, err)
	}
	term := skill.Term{Stat: key, Coef: coef}
	switch t.Side {
	case "", "attacker":
		term.Side = skill.SideAttacker
	case "defender":
		term.Side = skill.SideDefender
	default:
		return skill.Term{}, fmt.Errorf("formula: unknown side %q", t.Side)
	}
	return term, nil
}

func (cat *Catalog) requireBuff(id string) error {
	if id == "" {
		return errors.New("missing buff id")
	}
	if _, ok := cat.Buffs[id]; !ok {
		return fmt.Errorf("unknown buff %q", id)
	}
	return nil
}
