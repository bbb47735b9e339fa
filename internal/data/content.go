// Package data loads the combat content tables (units, buffs, skills and
// buff scripts) and builds them into a Catalog.
package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/sacredcombat/internal/model"
)

//go:embed content
var embedded embed.FS

// Default returns the built-in content tree.
func Default() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// Content file names inside a content tree.
const (
	UnitsFile  = "units.yaml"
	BuffsFile  = "buffs.yaml"
	SkillsFile = "skills.yaml"
	ScriptsDir = "scripts"
)

// Content is the parsed, not yet validated, content tree.
type Content struct {
	Units   []UnitDoc
	Buffs   []BuffDoc
	Skills  []SkillDoc
	Scripts map[string]string
}

// UnitDoc is one unit template.
type UnitDoc struct {
	ID     string            `yaml:"id"`
	Name   string            `yaml:"name"`
	Stats  map[string]string `yaml:"stats"`
	Buffs  []InitialBuffDoc  `yaml:"buffs"`
	Skills []string          `yaml:"skills"`
}

// InitialBuffDoc is a buff a unit template starts with.
type InitialBuffDoc struct {
	ID       string `yaml:"id"`
	Duration int    `yaml:"duration"`
}

// BuffDoc is one buff definition.
type BuffDoc struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Kind      string            `yaml:"kind"`
	Sacred    bool              `yaml:"sacred"`
	Removable bool              `yaml:"removable"`
	Debuff    bool              `yaml:"debuff"`
	Stats     []StatModDoc      `yaml:"stats"`
	Params    map[string]string `yaml:"params"`
	// Script names a file under scripts/ for scripted kinds.
	Script string `yaml:"script"`
}

// StatModDoc is one static stat modifier. Stat may be an alias.
type StatModDoc struct {
	Stat  string `yaml:"stat"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// SkillDoc is one skill definition.
type SkillDoc struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Targets SelectorDoc `yaml:"targets"`
	Pre     []ActionDoc `yaml:"pre"`
	Effects []EffectDoc `yaml:"effects"`
	Post    []ActionDoc `yaml:"post"`
}

// SelectorDoc describes a target selector and its wrappers.
type SelectorDoc struct {
	Kind        string `yaml:"kind"`
	Count       int    `yaml:"count"`
	Stat        string `yaml:"stat"`
	PreferLacks string `yaml:"prefer_lacks"`
	Repeat      int    `yaml:"repeat"`
	CritExtra   int    `yaml:"crit_extra"`
	Taunt       string `yaml:"taunt"`
}

// ActionDoc describes a pre- or post-action.
type ActionDoc struct {
	Kind     string   `yaml:"kind"`
	Count    int      `yaml:"count"`
	Buff     string   `yaml:"buff"`
	Buffs    []string `yaml:"buffs"`
	Duration int      `yaml:"duration"`
	Message  string   `yaml:"message"`
}

// EffectDoc describes one skill effect.
type EffectDoc struct {
	Kind        string        `yaml:"kind"`
	Formula     []TermDoc     `yaml:"formula"`
	When        *ConditionDoc `yaml:"when"`
	Buff        string        `yaml:"buff"`
	Duration    int           `yaml:"duration"`
	Probability float64       `yaml:"probability"`
}

// TermDoc is coef × stat of the attacker, or of the defender when Side is
// "defender".
type TermDoc struct {
	Stat string `yaml:"stat"`
	Coef string `yaml:"coef"`
	Side string `yaml:"side"`
}

// ConditionDoc gates an effect on the target's buffs. Exactly one field is set.
type ConditionDoc struct {
	TargetHas   string `yaml:"target_has"`
	TargetLacks string `yaml:"target_lacks"`
}

// Load reads and parses a content tree. A missing table file is empty;
// malformed YAML is a ConfigError. Scripts referenced by buffs are read from
// the scripts directory.
func Load(fsys fs.FS) (*Content, error) {
	var units struct {
		Units []UnitDoc `yaml:"units"`
	}
	var buffs struct {
		Buffs []BuffDoc `yaml:"buffs"`
	}
	var skills struct {
		Skills []SkillDoc `yaml:"skills"`
	}
	for name, out := range map[string]any{UnitsFile: &units, BuffsFile: &buffs, SkillsFile: &skills} {
		if err := readYAML(fsys, name, out); err != nil {
			return nil, err
		}
	}

	c := &Content{
		Units:   units.Units,
		Buffs:   buffs.Buffs,
		Skills:  skills.Skills,
		Scripts: make(map[string]string),
	}
	for _, b := range c.Buffs {
		if b.Script == "" {
			continue
		}
		if _, ok := c.Scripts[b.Script]; ok {
			continue
		}
		src, err := fs.ReadFile(fsys, path.Join(ScriptsDir, b.Script))
		if err != nil {
			return nil, fmt.Errorf("reading script %s for buff %s: %w", b.Script, b.ID, err)
		}
		c.Scripts[b.Script] = string(src)
	}
	return c, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return &model.ConfigError{Field: name, Err: err}
	}
	return nil
}
