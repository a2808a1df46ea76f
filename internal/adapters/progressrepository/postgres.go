package progressrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db      *sqlx.DB
	schema  string
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewPostgres(db *sqlx.DB, schema string, nowFunc func() time.Time) *Postgres {
	tracer := otel.Tracer("rigveda-explorer/progressrepository/postgres")
	return &Postgres{
		db:      db,
		schema:  schema,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

func (p *Postgres) LoadProgress(ctx context.Context, playerID string) (domain.ProgressRecord, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.LoadProgress")
	defer span.End()

	var data []byte
	err := p.db.QueryRowxContext(
		ctx,
		fmt.Sprintf("SELECT record FROM %s.progress WHERE player_id = $1", pq.QuoteIdentifier(p.schema)),
		playerID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	} else if err != nil {
		err := fmt.Errorf("failed to query progress: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": playerID,
		})
		return domain.ProgressRecord{}, err
	}

	record, err := DecodeProgress(data)
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("failed to decode progress: %w", err)
	}

	return record, nil
}

func (p *Postgres) SaveProgress(ctx context.Context, playerID string, record domain.ProgressRecord) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.SaveProgress")
	defer span.End()

	data, err := EncodeProgress(record)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(
		ctx,
		fmt.Sprintf(`INSERT INTO %s.progress
		(player_id, version, record, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET
			version = EXCLUDED.version,
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at`,
			pq.QuoteIdentifier(p.schema)),
		playerID,
		domain.ProgressSchemaVersion,
		string(data),
		p.nowFunc(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

func (p *Postgres) DeleteProgress(ctx context.Context, playerID string) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.DeleteProgress")
	defer span.End()

	_, err := p.db.ExecContext(
		ctx,
		fmt.Sprintf("DELETE FROM %s.progress WHERE player_id = $1", pq.QuoteIdentifier(p.schema)),
		playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	return nil
}
