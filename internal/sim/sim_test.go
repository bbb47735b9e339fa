package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sacredcombat/internal/config"
	"github.com/udisondev/sacredcombat/internal/data"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/testutil"
)

func newRunner(t *testing.T, enemies ...string) *Runner {
	t.Helper()
	content, err := data.Load(data.Default())
	require.NoError(t, err)
	cfg := config.DefaultSim()
	if len(enemies) > 0 {
		cfg.Battle.Enemies = enemies
	}
	return NewRunner(content, cfg)
}

func TestPlay_ApolloFlattensDummy(t *testing.T) {
	r := newRunner(t, "dummy")
	rec := &model.Recorder{}

	res, err := r.Play(0, rec)
	require.NoError(t, err)

	assert.True(t, res.Won)
	assert.True(t, res.AttackerAlive)
	assert.Equal(t, 1, res.Turns)
	assert.Equal(t, 1, res.Kills)
	assert.Equal(t, "20000000", res.Damage.String())
	require.Len(t, res.Resolutions, 1)
	assert.Equal(t, "apollo_radiant_gold", res.Resolutions[0].SkillID)
	assert.Contains(t, rec.Lines(), "-- turn 1 --")
	assert.Contains(t, rec.Lines(), "Apollo wins on turn 1")
}

func TestPlay_DuplicateTemplatesGetDistinctNames(t *testing.T) {
	r := newRunner(t, "dummy", "dummy")

	res, err := r.Play(3, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Kills)
	require.Len(t, res.Resolutions, 1)
	hits := res.Resolutions[0].Hits
	require.Len(t, hits, 2)
	assert.ElementsMatch(t, []string{"Training Dummy", "Training Dummy 2"}, []string{hits[0].Target, hits[1].Target})
}

func TestPlay_SameIndexReplays(t *testing.T) {
	r := newRunner(t)

	a, err := r.Play(5, nil)
	require.NoError(t, err)
	b, err := r.Play(5, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Seed, b.Seed)
	assert.Equal(t, a.Damage.String(), b.Damage.String())
	require.Len(t, b.Resolutions, len(a.Resolutions))
	for i := range a.Resolutions {
		assert.Equal(t, a.Resolutions[i].Targets, b.Resolutions[i].Targets)
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, time.Minute)
	serial := newRunner(t)
	serial.Runs, serial.Workers = 16, 1
	parallel := newRunner(t)
	parallel.Runs, parallel.Workers = 16, 6

	a, err := serial.Run(ctx)
	require.NoError(t, err)
	b, err := parallel.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 16, a.Runs)
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.TotalDamage.String(), b.TotalDamage.String())
	assert.True(t, a.TotalDamage.IsPositive())
}

func TestRun_Errors(t *testing.T) {
	t.Run("unknown template", func(t *testing.T) {
		r := newRunner(t, "ghost")
		r.Runs = 3
		_, err := r.Run(context.Background())
		assert.ErrorContains(t, err, "ghost")
	})
	t.Run("cancelled", func(t *testing.T) {
		r := newRunner(t)
		r.Runs = 3
		ctx, cancel := testutil.ContextWithCancel(t)
		cancel()
		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("no runs", func(t *testing.T) {
		r := newRunner(t)
		r.Runs = 0
		sum, err := r.Run(context.Background())
		require.NoError(t, err)
		_, err = sum.WinRate()
		assert.ErrorIs(t, err, ErrNoRuns)
	})
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]RunResult{
		{Won: true, AttackerAlive: true, Kills: 2, Turns: 1, Damage: testutil.D("300")},
		{AttackerAlive: false, Kills: 1, Turns: 4, Damage: testutil.D("100"), Warnings: 2},
	})

	assert.Equal(t, 2, sum.Runs)
	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 1, sum.AttackerDeaths)
	assert.Equal(t, 3, sum.Kills)
	assert.Equal(t, 2, sum.Warnings)
	assert.Equal(t, "400", sum.TotalDamage.String())
	assert.Equal(t, "200", sum.MeanDamage.String())
	assert.Equal(t, "100", sum.MinDamage.String())
	assert.Equal(t, "300", sum.MaxDamage.String())
	assert.Equal(t, "2.5", sum.MeanTurns.String())
	rate, err := sum.WinRate()
	require.NoError(t, err)
	assert.Equal(t, "0.5", rate.String())
}
