package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/portsignal/internal/model"
)

// ErrRunNotFound is returned when a run id has no stored analysis.
var ErrRunNotFound = errors.New("analysis run not found")

// RunSummary is the indexed header of a stored analysis run.
type RunSummary struct {
	ID             string
	AnalyzedAt     time.Time
	Source         string
	ItemCount      int
	Skipped        int
	AnomalyCount   int
	CriticalCount  int
	FlagCount      int
	TotalBudget    float64
	CurrentSpend   float64
	ProjectedSpend float64
	Trend          model.Trend
}

// SaveRun stores a bundle under a fresh run id.
func (c *Cache) SaveRun(b model.Bundle, src string) (RunSummary, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return RunSummary{}, fmt.Errorf("encoding bundle: %w", err)
	}

	critical := 0
	for _, a := range b.Anomalies {
		if a.Severity == model.AnomalyCritical {
			critical++
		}
	}

	run := RunSummary{
		ID:             uuid.NewString(),
		AnalyzedAt:     b.AnalyzedAt.UTC(),
		Source:         src,
		ItemCount:      b.Metrics.TotalItems,
		Skipped:        b.Skipped,
		AnomalyCount:   len(b.Anomalies),
		CriticalCount:  critical,
		FlagCount:      len(b.RiskFlags),
		TotalBudget:    b.Forecast.TotalBudget,
		CurrentSpend:   b.Forecast.CurrentSpend,
		ProjectedSpend: b.Forecast.ProjectedSpend,
		Trend:          b.Forecast.Trend,
	}

	_, err = c.db.Exec(`INSERT INTO analysis_runs
		(run_id, analyzed_at, source, item_count, skipped, anomaly_count, critical_count,
		 flag_count, total_budget, current_spend, projected_spend, trend, bundle_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AnalyzedAt.Format(time.RFC3339Nano), run.Source, run.ItemCount, run.Skipped,
		run.AnomalyCount, run.CriticalCount, run.FlagCount, run.TotalBudget, run.CurrentSpend,
		run.ProjectedSpend, string(run.Trend), string(body), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return RunSummary{}, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (c *Cache) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT run_id, analyzed_at, source, item_count, skipped, anomaly_count,
		critical_count, flag_count, total_budget, current_spend, projected_spend, trend
		FROM analysis_runs ORDER BY analyzed_at DESC, created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var analyzedAt string
		var trend sql.NullString
		err := rows.Scan(&r.ID, &analyzedAt, &r.Source, &r.ItemCount, &r.Skipped, &r.AnomalyCount,
			&r.CriticalCount, &r.FlagCount, &r.TotalBudget, &r.CurrentSpend, &r.ProjectedSpend, &trend)
		if err != nil {
			return nil, err
		}
		r.AnalyzedAt, _ = time.Parse(time.RFC3339Nano, analyzedAt)
		r.Trend = model.Trend(trend.String)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun returns the full bundle stored for id.
func (c *Cache) LoadRun(id string) (model.Bundle, error) {
	var body string
	err := c.db.QueryRow("SELECT bundle_json FROM analysis_runs WHERE run_id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bundle{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return model.Bundle{}, err
	}

	var b model.Bundle
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return model.Bundle{}, fmt.Errorf("decoding bundle %s: %w", id, err)
	}
	return b, nil
}
