// Package daemon provides the long-running portfolio signal monitor.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/store"
)

const (
	EventSnapshot    = "snapshot"
	EventSignalDelta = "signal_delta"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	// SourceName labels where records come from (file, api, postgres).
	SourceName string
}

// Recorder persists analysis runs. *store.Cache satisfies it.
type Recorder interface {
	SaveRun(b model.Bundle, src string) (store.RunSummary, error)
}

// Deps are the collaborators a Service polls and dispatches through.
type Deps struct {
	Engine     *pipeline.Engine
	Source     pipeline.Source
	Dispatcher dispatch.Dispatcher
	Recorder   Recorder
	// Now defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a compact signal state for status and event payloads.
type Snapshot struct {
	At             time.Time   `json:"at"`
	Items          int         `json:"items"`
	Skipped        int         `json:"skipped"`
	Anomalies      int         `json:"anomalies"`
	Critical       int         `json:"critical"`
	RiskFlags      int         `json:"risk_flags"`
	Actions        int         `json:"actions"`
	TotalBudget    float64     `json:"total_budget"`
	CurrentSpend   float64     `json:"current_spend"`
	ProjectedSpend float64     `json:"projected_spend"`
	Trend          model.Trend `json:"trend"`
	RiskScore      int         `json:"risk_score"`

	flagged []string
}

// Delta captures the change in signals between polls.
type Delta struct {
	Anomalies    int      `json:"anomalies"`
	Critical     int      `json:"critical"`
	RiskFlags    int      `json:"risk_flags"`
	CurrentSpend float64  `json:"current_spend"`
	NewlyFlagged []string `json:"newly_flagged,omitempty"`
	Cleared      []string `json:"cleared,omitempty"`
	TrendChanged bool     `json:"trend_changed"`
}

func (d Delta) isZero() bool {
	return d.Anomalies == 0 &&
		d.Critical == 0 &&
		d.RiskFlags == 0 &&
		d.CurrentSpend == 0 &&
		len(d.NewlyFlagged) == 0 &&
		len(d.Cleared) == 0 &&
		!d.TrendChanged
}

// Event is emitted whenever the signal state changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Source          string    `json:"source"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	deps Deps

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	bundle      model.Bundle
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service with the provided config and collaborators.
func New(cfg Config, deps Deps) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	if deps.Engine == nil {
		deps.Engine = pipeline.NewEngine(pipeline.DefaultPolicy(), nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		deps:      deps,
		startedAt: deps.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API and polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// Seed an initial snapshot so status is useful immediately.
		s.pollOnce(gctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})

	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	if s.deps.Source == nil {
		s.recordError(errors.New("no record source configured"))
		return
	}

	records, err := s.deps.Source.Records(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.recordError(err)
		return
	}

	now := s.deps.Now()
	b := s.deps.Engine.Analyze(records, now)
	s.apply(b, now)
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = s.deps.Now()
	s.pollCount++
	s.mu.Unlock()
	log.WithError(err).Warn("daemon poll failed")
}

// apply installs a fresh bundle and publishes an event if signals moved.
func (s *Service) apply(b model.Bundle, now time.Time) {
	snap := snapshotFromBundle(b)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.bundle = b
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSignalDelta, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if !publish {
		return
	}
	s.publishEvent(ev)

	if s.deps.Recorder != nil {
		if _, err := s.deps.Recorder.SaveRun(b, s.cfg.SourceName); err != nil {
			log.WithError(err).Warn("recording analysis run failed")
		}
	}
	log.WithFields(log.Fields{
		"event":     ev.Type,
		"anomalies": snap.Anomalies,
		"flags":     snap.RiskFlags,
	}).Info("signals updated")
}

func snapshotFromBundle(b model.Bundle) Snapshot {
	snap := Snapshot{
		At:             b.AnalyzedAt,
		Items:          b.Metrics.TotalItems,
		Skipped:        b.Skipped,
		Anomalies:      len(b.Anomalies),
		RiskFlags:      len(b.RiskFlags),
		Actions:        len(b.RecommendedActions),
		TotalBudget:    b.Forecast.TotalBudget,
		CurrentSpend:   b.Forecast.CurrentSpend,
		ProjectedSpend: b.Forecast.ProjectedSpend,
		Trend:          b.Forecast.Trend,
		RiskScore:      b.Metrics.Risk.Score,
	}
	for _, a := range b.Anomalies {
		if a.Severity == model.AnomalyCritical {
			snap.Critical++
		}
		snap.flagged = append(snap.flagged, a.WorkItemID)
	}
	sort.Strings(snap.flagged)
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Anomalies:    curr.Anomalies - prev.Anomalies,
		Critical:     curr.Critical - prev.Critical,
		RiskFlags:    curr.RiskFlags - prev.RiskFlags,
		CurrentSpend: curr.CurrentSpend - prev.CurrentSpend,
		TrendChanged: curr.Trend != prev.Trend,
	}
	d.NewlyFlagged = missingFrom(curr.flagged, prev.flagged)
	d.Cleared = missingFrom(prev.flagged, curr.flagged)
	return d
}

// missingFrom returns the ids of a absent from b. Both are sorted.
func missingFrom(a, b []string) []string {
	var out []string
	j := 0
	for _, id := range a {
		for j < len(b) && b[j] < id {
			j++
		}
		if j < len(b) && b[j] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Source:          s.cfg.SourceName,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// Latest returns the most recent bundle and whether a poll has succeeded yet.
func (s *Service) Latest() (model.Bundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle, s.hasSnapshot
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Router builds the gin engine serving the daemon API.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/bundle", s.handleBundle)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/actions/:id/dispatch", s.handleDispatch)
	return r
}
