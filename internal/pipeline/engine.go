// Package pipeline turns work-item snapshots into signal bundles: loading,
// normalization, burn analysis, risk classification, forecasting and ranking.
package pipeline

import (
	"time"

	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/source"
)

// Policy holds the tunable constants of an analysis pass.
type Policy struct {
	CompletionFactor   float64 // share of remaining budget expected to be spent
	ConfidenceLevel    float64 // reported as-is on the forecast
	HighValueThreshold float64
	ActionCap          int
	SoftCap            int // fill-in actions are added only below this length
	TrendUpper         float64
	TrendLower         float64
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		CompletionFactor:   0.85,
		ConfidenceLevel:    78,
		HighValueThreshold: 200000,
		ActionCap:          5,
		SoftCap:            3,
		TrendUpper:         1.05,
		TrendLower:         0.95,
	}
}

// withDefaults fills unset or nonsensical fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.ActionCap < 1 {
		p.ActionCap = d.ActionCap
	}
	if p.SoftCap < 0 {
		p.SoftCap = d.SoftCap
	}
	if p.TrendUpper <= 0 {
		p.TrendUpper = d.TrendUpper
	}
	if p.TrendLower <= 0 {
		p.TrendLower = d.TrendLower
	}
	if p.CompletionFactor < 0 {
		p.CompletionFactor = d.CompletionFactor
	}
	if p.HighValueThreshold < 0 {
		p.HighValueThreshold = d.HighValueThreshold
	}
	return p
}

// Engine runs analysis passes. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	policy Policy
	table  source.FieldTable
}

// NewEngine creates an engine. A nil table selects source.DefaultFieldTable.
func NewEngine(policy Policy, table source.FieldTable) *Engine {
	if table == nil {
		table = source.DefaultFieldTable()
	}
	return &Engine{policy: policy.withDefaults(), table: table}
}

// Policy returns the effective policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Analyze normalizes records and runs a full pass at now. Malformed records
// are skipped and counted in Bundle.Skipped.
func (e *Engine) Analyze(records []source.Record, now time.Time) model.Bundle {
	items, skipped := source.NormalizeAll(records, e.table)
	b := e.AnalyzeItems(items, now)
	b.Skipped = skipped
	return b
}

// AnalyzeItems runs a full pass over already-normalized items.
func (e *Engine) AnalyzeItems(items []model.WorkItem, now time.Time) model.Bundle {
	readings := MeasureAll(items, now)
	anomalies := DetectAnomalies(readings, now)
	flags := ClassifyRisks(readings)

	return model.Bundle{
		AnalyzedAt:         now,
		Anomalies:          anomalies,
		RiskFlags:          flags,
		Forecast:           Forecast(items, e.policy),
		RecommendedActions: RankActions(anomalies, flags, items, e.policy),
		Metrics:            ComputeMetrics(readings, now),
	}
}
