package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/udisondev/sacredcombat/internal/db/migrations"
	"github.com/udisondev/sacredcombat/internal/game/skill"
)

// SQLiteStore stores battle reports in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// sqlite migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// single writer
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	if err := migrate(ctx, sqlDB, "sqlite3", migrations.SQLiteDir); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts res and returns its new id.
func (s *SQLiteStore) Save(ctx context.Context, res *skill.Resolution) (uuid.UUID, error) {
	row, err := newReportRow(res)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO battle_reports (id, skill_id, caster, turn, total_damage, warnings, resolution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id.String(), row.skillID, row.caster, row.turn, row.totalDamage, row.warnings,
		string(row.body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("saving report for %s: %w", row.skillID, err)
	}
	slog.Debug("saved battle report", "id", row.id, "skill", row.skillID)
	return row.id, nil
}

// Get returns the report with the given id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	var createdAt, body string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, resolution FROM battle_reports WHERE id = ?`, id.String(),
	).Scan(&createdAt, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %s: %w", id, err)
	}
	return decodeSQLiteReport(id.String(), createdAt, body)
}

// ListBySkill returns up to limit reports for skillID, oldest first.
func (s *SQLiteStore) ListBySkill(ctx context.Context, skillID string, limit int) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, resolution FROM battle_reports
		 WHERE skill_id = ? ORDER BY seq LIMIT ?`,
		skillID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports for %s: %w", skillID, err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var id, createdAt, body string
		if err := rows.Scan(&id, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		rep, err := decodeSQLiteReport(id, createdAt, body)
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

func decodeSQLiteReport(rawID, rawCreated, body string) (*Report, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parsing report id %q: %w", rawID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rawCreated)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", id, err)
	}
	return decodeReport(id, createdAt, []byte(body))
}
