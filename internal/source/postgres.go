package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultQuery selects every column of the work_items table.
const DefaultQuery = `SELECT * FROM work_items`

// PostgresSource reads work-item records from a Postgres query. Column names
// become record keys, so the field table resolves them like any other record.
type PostgresSource struct {
	pool  *pgxpool.Pool
	query string
}

// NewPostgresSource creates a PostgresSource over an existing pool.
func NewPostgresSource(pool *pgxpool.Pool, query string) *PostgresSource {
	if query == "" {
		query = DefaultQuery
	}
	return &PostgresSource{pool: pool, query: query}
}

// ConnectPostgres opens a pool for url and verifies it with a ping.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Records runs the configured query and returns one record per row.
func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		rec := make(Record, len(fields))
		for i, fd := range fields {
			if i < len(values) {
				rec[fd.Name] = columnValue(values[i])
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// columnValue converts driver-specific column types into the plain values the
// normalizer understands.
func columnValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Timestamptz:
		if !x.Valid {
			return nil
		}
		return x.Time
	}
	return v
}
