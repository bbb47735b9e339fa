package data

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/udisondev/sacredcombat/internal/game/buff"
	"github.com/udisondev/sacredcombat/internal/game/skill"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/script"
)

// Catalog holds the built, immutable content. Scripted buffs own Lua state,
// so a Catalog must not be shared between concurrently running battles;
// build one per battle instead.
type Catalog struct {
	Buffs  model.BuffTable
	Skills map[string]*skill.Definition
	units  map[string]*UnitTemplate
}

// UnitTemplate is a validated unit description.
type UnitTemplate struct {
	ID     string
	Name   string
	Stats  model.StatBlock
	Buffs  []InitialBuffDoc
	Skills []string
}

// Build validates the content and constructs every definition. Any problem
// is a ConfigError.
func (c *Content) Build() (*Catalog, error) {
	cat := &Catalog{
		Buffs:  make(model.BuffTable, len(c.Buffs)),
		Skills: make(map[string]*skill.Definition, len(c.Skills)),
		units:  make(map[string]*UnitTemplate, len(c.Units)),
	}

	for _, doc := range c.Buffs {
		def, err := c.buildBuff(doc)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.Buffs[doc.ID]; dup {
			return nil, configErr("buff "+doc.ID, errors.New("duplicate id"))
		}
		cat.Buffs[doc.ID] = def
	}

	for _, doc := range c.Skills {
		def, err := cat.buildSkill(doc)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.Skills[doc.ID]; dup {
			return nil, configErr("skill "+doc.ID, errors.New("duplicate id"))
		}
		cat.Skills[doc.ID] = def
	}

	for _, doc := range c.Units {
		tmpl, err := cat.buildUnit(doc)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.units[doc.ID]; dup {
			return nil, configErr("unit "+doc.ID, errors.New("duplicate id"))
		}
		cat.units[doc.ID] = tmpl
	}

	slog.Debug("built content catalog",
		"buffs", len(cat.Buffs),
		"skills", len(cat.Skills),
		"units", len(cat.units))
	return cat, nil
}

// LoadCatalog loads and builds the built-in content.
func LoadCatalog() (*Catalog, error) {
	content, err := Load(Default())
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return content.Build()
}

// Skill returns the skill definition for id.
func (cat *Catalog) Skill(id string) (*skill.Definition, bool) {
	def, ok := cat.Skills[id]
	return def, ok
}

// Template returns the unit template for id.
func (cat *Catalog) Template(id string) (*UnitTemplate, bool) {
	t, ok := cat.units[id]
	return t, ok
}

// UnitIDs returns the template ids, sorted.
func (cat *Catalog) UnitIDs() []string {
	ids := make([]string, 0, len(cat.units))
	for id := range cat.units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewUnit creates a unit from a template, at full health with the template's
// starting buffs applied. An empty name uses the template name.
func (cat *Catalog) NewUnit(templateID, name string) (*model.Unit, error) {
	tmpl, ok := cat.units[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown unit template %q", templateID)
	}
	if name == "" {
		name = tmpl.Name
	}
	u, err := model.NewUnit(name, tmpl.Stats)
	if err != nil {
		return nil, fmt.Errorf("creating unit %s: %w", templateID, err)
	}
	for _, ib := range tmpl.Buffs {
		_, errs := model.ApplyBuff(nil, "", u, nil, cat.Buffs[ib.ID], ib.Duration)
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("applying %s to %s: %w", ib.ID, name, err)
		}
	}
	u.SetCurrentHP(u.MaxHP())
	return u, nil
}

func (c *Content) buildBuff(doc BuffDoc) (model.BuffDefinition, error) {
	field := "buff " + doc.ID
	if doc.ID == "" {
		return nil, configErr("buff", errors.New("missing id"))
	}

	var mods []model.StatMod
	for _, m := range doc.Stats {
		keys, err := buff.ExpandStat(m.Stat)
		if err != nil {
			return nil, configErr(field, err)
		}
		typ, err := parseModType(m.Type)
		if err != nil {
			return nil, configErr(field, err)
		}
		value, err := decimal.NewFromString(m.Value)
		if err != nil {
			return nil, configErr(field, fmt.Errorf("stat %s value: %w", m.Stat, err))
		}
		for _, k := range keys {
			mods = append(mods, model.StatMod{Stat: k, Type: typ, Value: value})
		}
	}

	params := make(map[string]string, len(doc.Params)+1)
	for k, v := range doc.Params {
		params[k] = v
	}
	if doc.Script != "" {
		src, ok := c.Scripts[doc.Script]
		if !ok {
			return nil, configErr(field, fmt.Errorf("script %s not loaded", doc.Script))
		}
		params[script.SourceParam] = src
	}

	return buff.Create(buff.Spec{
		Base: buff.NewBase(doc.ID, doc.Name, buff.Traits{
			Sacred:    doc.Sacred,
			Removable: doc.Removable,
			Debuff:    doc.Debuff,
		}),
		Kind:   doc.Kind,
		Stats:  mods,
		Params: params,
	})
}

func parseModType(s string) (model.StatModType, error) {
	switch s {
	case "percent", "":
		return model.StatModPercent, nil
	case "flat":
		return model.StatModFlat, nil
	}
	return 0, fmt.Errorf("unknown modifier type %q", s)
}

func (cat *Catalog) buildUnit(doc UnitDoc) (*UnitTemplate, error) {
	field := "unit " + doc.ID
	values := make(map[model.StatKey]decimal.Decimal, len(model.StatKeys))
	for _, k := range model.SecondaryStatKeys {
		values[k] = decimal.Zero
	}
	for name, raw := range doc.Stats {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, configErr(field, fmt.Errorf("stat %s: %w", name, err))
		}
		values[model.StatKey(name)] = v
	}
	stats, err := model.NewStatBlock(values)
	if err != nil {
		return nil, configErr(field, err)
	}

	for _, ib := range doc.Buffs {
		if _, ok := cat.Buffs[ib.ID]; !ok {
			return nil, configErr(field, fmt.Errorf("unknown buff %q", ib.ID))
		}
		if ib.Duration <= 0 {
			return nil, configErr(field, fmt.Errorf("buff %s: duration must be positive", ib.ID))
		}
	}
	for _, id := range doc.Skills {
		if _, ok := cat.Skills[id]; !ok {
			return nil, configErr(field, fmt.Errorf("unknown skill %q", id))
		}
	}

	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	return &UnitTemplate{ID: doc.ID, Name: name, Stats: stats, Buffs: doc.Buffs, Skills: doc.Skills}, nil
}

func configErr(field string, err error) error {
	var ce *model.ConfigError
	if errors.As(err, &ce) {
		return &model.ConfigError{Field: field + ": " + ce.Field, Err: ce.Err}
	}
	return &model.ConfigError{Field: field, Err: err}
}
