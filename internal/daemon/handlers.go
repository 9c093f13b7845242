package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/source"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Records []source.Record `json:"records" binding:"required"`
	// Now pins the analysis clock; the wall clock is used when absent.
	Now *time.Time `json:"now"`
}

// DispatchResponse is returned by POST /v1/actions/:id/dispatch.
type DispatchResponse struct {
	Dispatched bool                `json:"dispatched"`
	Descriptor dispatch.Descriptor `json:"descriptor"`
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleBundle(c *gin.Context) {
	b, ok := s.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "not_ready",
			Message: "no analysis has completed yet",
		})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

// handleAnalyze runs an ad-hoc pass over posted records. The daemon's own
// state is left untouched.
func (s *Service) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	now := s.deps.Now()
	if req.Now != nil && !req.Now.IsZero() {
		now = *req.Now
	}
	c.JSON(http.StatusOK, s.deps.Engine.Analyze(req.Records, now))
}

func (s *Service) handleDispatch(c *gin.Context) {
	if s.deps.Dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "no_dispatcher",
			Message: "no dispatch sink configured",
		})
		return
	}

	b, ok := s.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "not_ready",
			Message: "no analysis has completed yet",
		})
		return
	}

	action, ok := b.Action(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "no recommended action with id " + c.Param("id"),
		})
		return
	}

	d := dispatch.Translate(action)
	if err := s.deps.Dispatcher.Dispatch(c.Request.Context(), d); err != nil {
		log.WithError(err).WithField("action", action.ID).Warn("dispatch failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "dispatch_failed",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, DispatchResponse{Dispatched: true, Descriptor: d})
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(c.Writer, Event{
		Type:      EventSnapshot,
		Timestamp: s.deps.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			writeSSE(c.Writer, ev)
			c.Writer.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = io.WriteString(w, "event: "+ev.Type+"\n")
	_, _ = io.WriteString(w, "data: "+string(data)+"\n\n")
}
