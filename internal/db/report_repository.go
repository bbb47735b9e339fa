package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/sacredcombat/internal/game/skill"
)

// ReportRepository stores battle reports in PostgreSQL.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save inserts res and returns its new id.
func (r *ReportRepository) Save(ctx context.Context, res *skill.Resolution) (uuid.UUID, error) {
	row, err := newReportRow(res)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO battle_reports (id, skill_id, caster, turn, total_damage, warnings, resolution)
		 VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7)`,
		row.id, row.skillID, row.caster, row.turn, row.totalDamage, row.warnings, row.body,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("saving report for %s: %w", row.skillID, err)
	}
	slog.Debug("saved battle report", "id", row.id, "skill", row.skillID)
	return row.id, nil
}

// Get returns the report with the given id, or ErrNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	var (
		createdAt time.Time
		body      []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT created_at, resolution FROM battle_reports WHERE id = $1`, id,
	).Scan(&createdAt, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %s: %w", id, err)
	}
	return decodeReport(id, createdAt, body)
}

// ListBySkill returns up to limit reports for skillID, oldest first.
func (r *ReportRepository) ListBySkill(ctx context.Context, skillID string, limit int) ([]Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, created_at, resolution FROM battle_reports
		 WHERE skill_id = $1 ORDER BY seq LIMIT $2`,
		skillID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports for %s: %w", skillID, err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			body      []byte
		)
		if err := rows.Scan(&id, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		rep, err := decodeReport(id, createdAt, body)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return out, nil
}
