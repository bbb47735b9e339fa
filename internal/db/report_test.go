package db_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sacredcombat/internal/config"
	"github.com/udisondev/sacredcombat/internal/db"
	"github.com/udisondev/sacredcombat/internal/game/skill"
	"github.com/udisondev/sacredcombat/internal/testutil"
)

func resolution(skillID string, damage ...string) *skill.Resolution {
	res := &skill.Resolution{
		SkillID:   skillID,
		SkillName: "Radiant Gold",
		Caster:    "Apollo",
		Turn:      3,
		BuffsApplied: []skill.BuffChange{
			{Unit: "Apollo", BuffID: "cold_blood_sacred", Duration: 4},
		},
		Warnings: []skill.Warning{{Kind: skill.WarningContent, Message: "content error: boom"}},
	}
	for _, d := range damage {
		res.Targets = append(res.Targets, "Dummy")
		res.Hits = append(res.Hits, skill.Hit{
			Target:  "Dummy",
			Kind:    skill.KindDamage,
			Raw:     testutil.D(d),
			Final:   testutil.D(d).Mul(testutil.D("1.3")),
			Applied: testutil.D(d),
		})
	}
	return res
}

func assertSameResolution(t *testing.T, want, got *skill.Resolution) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

// exerciseStore runs the behaviour shared by every ReportStore.
func exerciseStore(t *testing.T, store db.ReportStore) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	first := resolution("apollo_radiant_gold", "1000", "2500")
	second := resolution("apollo_radiant_gold", "700")
	other := resolution("apollo_beloved", "10")

	id1, err := store.Save(ctx, first)
	require.NoError(t, err)
	id2, err := store.Save(ctx, second)
	require.NoError(t, err)
	_, err = store.Save(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := store.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, id1, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assertSameResolution(t, first, got.Resolution)
	assert.Equal(t, "3500", got.Resolution.TotalDamage().String())
	assert.Equal(t, "content error: boom", got.Resolution.Warnings[0].Message)
	assert.NoError(t, got.Resolution.Warnings[0].Err())

	list, err := store.ListBySkill(ctx, "apollo_radiant_gold", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id1, list[0].ID)
	assert.Equal(t, id2, list[1].ID)

	list, err = store.ListBySkill(ctx, "apollo_radiant_gold", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = store.ListBySkill(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = store.Save(ctx, nil)
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	store, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStore_ReopenKeepsReports(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	path := filepath.Join(t.TempDir(), "reports.db")

	store, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	id, err := store.Save(ctx, resolution("apollo_beloved", "42"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "apollo_beloved", got.Resolution.SkillID)
}

func TestOpen(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	store, closeFn, err := db.Open(ctx, config.Store{Driver: config.DriverNone})
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()

	store, closeFn, err = db.Open(ctx, config.Store{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	t.Cleanup(closeFn)
	_, err = store.Save(ctx, resolution("apollo_beloved", "1"))
	assert.NoError(t, err)

	_, _, err = db.Open(ctx, config.Store{Driver: "mongo"})
	assert.Error(t, err)
}

func TestReportRepository_Postgres(t *testing.T) {
	exerciseStore(t, testutil.SetupTestDB(t).Reports())
}
