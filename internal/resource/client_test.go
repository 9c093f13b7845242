package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientEmptyBaseURL(t *testing.T) {
	assert.Nil(t, NewClient("  ", "tok", Options{}))
}

func TestFetchResourceArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchase-orders", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"po-1","totalAmount":1200.5},{"id":"po-2","kind":"invoice"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", Options{})
	recs, err := c.FetchResource(context.Background(), "purchase-orders")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "purchase-order", recs[0]["kind"])
	assert.Equal(t, json.Number("1200.5"), recs[0]["totalAmount"])
	assert.Equal(t, "invoice", recs[1]["kind"], "explicit kind is kept")
}

func TestFetchResourceFollowsPages(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"data":[{"id":"a"}],"next":"/statements-of-work?page=2"}`))
		case "2":
			_, _ = w.Write([]byte(`{"items":[{"id":"b"},{"id":"c"}]}`))
		default:
			t.Errorf("unexpected page %q", r.URL.RawQuery)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", Options{})
	recs, err := c.FetchResource(context.Background(), "statements-of-work")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, "contract", r["kind"])
	}
	assert.Equal(t, "c", recs[2]["id"])
}

func TestRecordsConcatenatesResources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/statements-of-work":
			_, _ = w.Write([]byte(`[{"id":"s1"}]`))
		case "/purchase-orders":
			_, _ = w.Write([]byte(`[{"id":"p1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", Options{Resources: []string{"statements-of-work", "purchase-orders"}})
	recs, err := c.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "s1", recs[0]["id"])
	assert.Equal(t, "p1", recs[1]["id"])
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewClient(srv.URL, "", Options{})
		_, err := c.FetchResource(context.Background(), "x")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		srv.Close()
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", Options{FailureThreshold: 2, Cooldown: time.Minute})
	ctx := context.Background()

	for range 2 {
		_, err := c.FetchResource(ctx, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := c.FetchResource(ctx, "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits the request")
}

func TestUnauthorizedDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", Options{FailureThreshold: 1})
	for range 3 {
		_, err := c.FetchResource(context.Background(), "x")
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestKindFor(t *testing.T) {
	tests := map[string]string{
		"purchase-orders":         "purchase-order",
		"/api/statements-of-work": "contract",
		"sows":                    "contract",
		"invoices":                "invoice",
		"timecards":               "timecard",
		"vendors":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, kindFor(in), in)
	}
}
