package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/sacredcombat/internal/config"
	"github.com/udisondev/sacredcombat/internal/game/skill"
)

// ErrNotFound is returned by Get when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// Report is a persisted skill resolution.
type Report struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Resolution *skill.Resolution
}

// ReportStore persists battle reports.
type ReportStore interface {
	Save(ctx context.Context, res *skill.Resolution) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	// ListBySkill returns up to limit reports for skillID, oldest first.
	ListBySkill(ctx context.Context, skillID string, limit int) ([]Report, error)
}

// Open connects the store selected by cfg and applies its migrations. The
// returned func releases the connection. DriverNone yields a nil store.
func Open(ctx context.Context, cfg config.Store) (ReportStore, func(), error) {
	switch cfg.Driver {
	case config.DriverNone:
		return nil, func() {}, nil
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(ctx, dsn); err != nil {
			return nil, nil, err
		}
		d, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return d.Reports(), d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// reportRow is the column set shared by both dialects.
type reportRow struct {
	id          uuid.UUID
	skillID     string
	caster      string
	turn        int
	totalDamage string
	warnings    int
	body        []byte
}

func newReportRow(res *skill.Resolution) (reportRow, error) {
	if res == nil {
		return reportRow{}, errors.New("nil resolution")
	}
	body, err := json.Marshal(res)
	if err != nil {
		return reportRow{}, fmt.Errorf("encoding resolution %s: %w", res.SkillID, err)
	}
	return reportRow{
		id:          uuid.New(),
		skillID:     res.SkillID,
		caster:      res.Caster,
		turn:        res.Turn,
		totalDamage: res.TotalDamage().String(),
		warnings:    len(res.Warnings),
		body:        body,
	}, nil
}

func decodeReport(id uuid.UUID, createdAt time.Time, body []byte) (*Report, error) {
	var res skill.Resolution
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return &Report{ID: id, CreatedAt: createdAt, Resolution: &res}, nil
}
