package summaryrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

// PostgresStore implements summary.Store using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the summaries table when it does not exist yet.
func (r *PostgresStore) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS summaries (
			id BIGSERIAL PRIMARY KEY,
			original_content TEXT NOT NULL,
			summary TEXT NOT NULL,
			source_url TEXT,
			article_title TEXT,
			target_length TEXT NOT NULL,
			model TEXT NOT NULL,
			latency_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// Save inserts one record and returns it with the assigned id.
func (r *PostgresStore) Save(ctx context.Context, record summary.Record) (summary.Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO summaries (original_content, summary, source_url, article_title, target_length, model, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, record.OriginalContent, record.Summary, nullable(record.SourceURL), nullable(record.ArticleTitle),
		record.TargetLength, record.Model, record.LatencyMs, record.CreatedAt)
	if err := row.Scan(&record.ID); err != nil {
		return summary.Record{}, err
	}
	return record, nil
}

// FindByID fetches one record.
func (r *PostgresStore) FindByID(ctx context.Context, id int64) (summary.Record, bool, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		return summary.Record{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return summary.Record{}, false, rows.Err()
	}
	record, err := scanRecord(rows)
	if err != nil {
		return summary.Record{}, false, err
	}
	return record, true, rows.Err()
}

// Recent returns the newest records first.
func (r *PostgresStore) Recent(ctx context.Context, limit int) ([]summary.Record, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Search matches a case-insensitive substring against summary, original
// content, and title, newest first.
func (r *PostgresStore) Search(ctx context.Context, query string, limit int) ([]summary.Record, error) {
	pattern := "%" + query + "%"
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE summary ILIKE $1 OR original_content ILIKE $1 OR article_title ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// DeleteByID removes one record, reporting whether it existed.
func (r *PostgresStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM summaries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAll wipes the history.
func (r *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM summaries`)
	return err
}

const selectColumns = `
	SELECT id, original_content, summary, source_url, article_title, target_length, model, latency_ms, created_at
	FROM summaries`

type rowScanner interface {
	Scan(dest ...any) error
}

type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
}

func collectRecords(rows rowIterator) ([]summary.Record, error) {
	var records []summary.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row rowScanner) (summary.Record, error) {
	var (
		record    summary.Record
		sourceURL sql.NullString
		title     sql.NullString
	)
	if err := row.Scan(&record.ID, &record.OriginalContent, &record.Summary, &sourceURL, &title,
		&record.TargetLength, &record.Model, &record.LatencyMs, &record.CreatedAt); err != nil {
		return summary.Record{}, err
	}
	record.SourceURL = sourceURL.String
	record.ArticleTitle = title.String
	return record, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ summary.Store = (*PostgresStore)(nil)
