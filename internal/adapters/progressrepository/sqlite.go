package progressrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SQLite stores progress in a local file, for running the explorer without a database server
type SQLite struct {
	db      *sqlx.DB
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewSQLite(db *sqlx.DB, nowFunc func() time.Time) *SQLite {
	tracer := otel.Tracer("rigveda-explorer/progressrepository/sqlite")
	return &SQLite{
		db:      db,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

func (s *SQLite) LoadProgress(ctx context.Context, playerID string) (domain.ProgressRecord, error) {
	ctx, span := s.tracer.Start(ctx, "SQLite.LoadProgress")
	defer span.End()

	var data string
	err := s.db.GetContext(ctx, &data, "SELECT record FROM progress WHERE player_id = ?", playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	} else if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("failed to query progress: %w", err)
	}

	record, err := DecodeProgress([]byte(data))
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("failed to decode progress: %w", err)
	}

	return record, nil
}

func (s *SQLite) SaveProgress(ctx context.Context, playerID string, record domain.ProgressRecord) error {
	ctx, span := s.tracer.Start(ctx, "SQLite.SaveProgress")
	defer span.End()

	data, err := EncodeProgress(record)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO progress (player_id, version, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (player_id)
		DO UPDATE SET
			version = excluded.version,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		playerID,
		domain.ProgressSchemaVersion,
		string(data),
		s.nowFunc().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

func (s *SQLite) DeleteProgress(ctx context.Context, playerID string) error {
	ctx, span := s.tracer.Start(ctx, "SQLite.DeleteProgress")
	defer span.End()

	_, err := s.db.ExecContext(ctx, "DELETE FROM progress WHERE player_id = ?", playerID)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	return nil
}
