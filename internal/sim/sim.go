// Package sim replays a scripted encounter many times in parallel and
// aggregates the outcomes.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/sacredcombat/internal/config"
	"github.com/udisondev/sacredcombat/internal/data"
	"github.com/udisondev/sacredcombat/internal/game/skill"
	"github.com/udisondev/sacredcombat/internal/game/turn"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/rng"
)

// Runner plays Encounter Runs times. Every run builds its own catalog and
// units from Content, so runs share nothing mutable.
type Runner struct {
	Content   *data.Content
	Encounter config.Battle
	Seed      uint64
	Runs      int
	Workers   int
}

// NewRunner returns a Runner configured from cfg.
func NewRunner(content *data.Content, cfg config.Sim) *Runner {
	return &Runner{
		Content:   content,
		Encounter: cfg.Battle,
		Seed:      cfg.Seed,
		Runs:      cfg.Runs,
		Workers:   cfg.Workers,
	}
}

// RunResult is the outcome of one battle.
type RunResult struct {
	Index int
	Seed  uint64
	// Turns is the number of turns actually played.
	Turns         int
	Won           bool
	AttackerAlive bool
	Kills         int
	Damage        decimal.Decimal
	Warnings      int
	Resolutions   []*skill.Resolution
}

// Play runs battle index with its derived seed, writing the battle log to
// sink (nil discards it).
func (r *Runner) Play(index int, sink model.LogSink) (RunResult, error) {
	seed := rng.Derive(r.Seed, index)
	out := RunResult{Index: index, Seed: seed, Damage: decimal.Zero}

	cat, err := r.Content.Build()
	if err != nil {
		return out, fmt.Errorf("building catalog: %w", err)
	}

	names := make(map[string]int)
	attacker, err := newUnit(cat, r.Encounter.Attacker, names)
	if err != nil {
		return out, err
	}
	tmpl, _ := cat.Template(r.Encounter.Attacker)
	if len(tmpl.Skills) == 0 {
		return out, fmt.Errorf("attacker %s has no skills", r.Encounter.Attacker)
	}
	allies := []*model.Unit{attacker}
	for _, id := range r.Encounter.Allies {
		u, err := newUnit(cat, id, names)
		if err != nil {
			return out, err
		}
		allies = append(allies, u)
	}
	var enemies []*model.Unit
	for _, id := range r.Encounter.Enemies {
		u, err := newUnit(cat, id, names)
		if err != nil {
			return out, err
		}
		enemies = append(enemies, u)
	}

	b := &model.Battle{
		Attacker: attacker,
		Allies:   allies,
		Enemies:  enemies,
		Log:      sink,
		Rand:     rng.New(seed),
		Buffs:    cat.Buffs,
	}
	everyone := append(append([]*model.Unit{}, allies...), enemies...)

	var sched turn.Scheduler
	for sched.Advance(b) <= r.Encounter.Turns {
		b.Logf("-- turn %d --", b.Turn)
		out.Turns = b.Turn
		for _, u := range everyone {
			out.Warnings += len(sched.StartTurn(b, u))
		}
		if !attacker.IsAlive() {
			break
		}

		def, _ := cat.Skill(tmpl.Skills[(b.Turn-1)%len(tmpl.Skills)])
		res := skill.Execute(def, b)
		out.Resolutions = append(out.Resolutions, res)
		out.Damage = out.Damage.Add(res.TotalDamage())
		out.Warnings += len(res.Warnings)

		for _, u := range everyone {
			sched.EndTurn(u)
		}
		if len(b.LivingEnemies()) == 0 {
			out.Won = true
			b.Logf("%s wins on turn %d", attacker.Name(), b.Turn)
			break
		}
		if !attacker.IsAlive() {
			break
		}
	}

	out.AttackerAlive = attacker.IsAlive()
	out.Kills = len(enemies) - len(model.Living(enemies))
	return out, nil
}

// newUnit instantiates template id. Repeated templates get a numeric suffix
// so every unit in the battle has a distinct name.
func newUnit(cat *data.Catalog, id string, names map[string]int) (*model.Unit, error) {
	tmpl, ok := cat.Template(id)
	if !ok {
		return nil, fmt.Errorf("unknown unit template %q", id)
	}
	names[tmpl.Name]++
	name := tmpl.Name
	if n := names[tmpl.Name]; n > 1 {
		name += " " + strconv.Itoa(n)
	}
	return cat.NewUnit(id, name)
}

// Run plays every battle on a pool of Workers goroutines and summarises
// them in run order, so the summary does not depend on the worker count.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.Runs < 0 {
		return Summary{}, fmt.Errorf("negative run count %d", r.Runs)
	}
	results := make([]RunResult, r.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i := range r.Runs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Play(i, nil)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res.Resolutions = nil
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, fmt.Errorf("simulation interrupted: %w", err)
	}

	sum := Summarize(results)
	slog.Info("simulation finished",
		"runs", sum.Runs,
		"wins", sum.Wins,
		"mean_damage", sum.MeanDamage.StringFixed(0),
		"warnings", sum.Warnings)
	return sum, nil
}
