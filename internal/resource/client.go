// Package resource fetches work-item records from the procurement
// application's REST resource layer.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/theirongolddev/portsignal/internal/source"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 16 << 20 // 16 MB
	maxPages       = 100
)

var (
	// ErrUnauthorized indicates the API token is missing, expired or invalid.
	ErrUnauthorized = errors.New("resource: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("resource: rate limited")
	// ErrUnavailable indicates the circuit breaker is open after repeated failures.
	ErrUnavailable = errors.New("resource: api unavailable")
)

// Client fetches list resources from the procurement API.
type Client struct {
	baseURL   string
	token     string
	resources []string
	timeout   time.Duration
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
}

// Options tunes a Client.
type Options struct {
	Resources []string
	Timeout   time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
}

// NewClient creates a client for the API rooted at baseURL.
// Returns nil if baseURL is empty.
func NewClient(baseURL, token string, opts Options) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}

	c := &Client{
		baseURL:   baseURL,
		token:     strings.TrimSpace(token),
		resources: opts.Resources,
		timeout:   opts.Timeout,
		http:      &http.Client{},
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "resource-api",
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Auth failures are caller errors, not an unhealthy API.
			return err == nil || errors.Is(err, ErrUnauthorized)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return c
}

// Records fetches every configured resource and concatenates the records.
// A record without a kind is tagged with the kind implied by its resource.
func (c *Client) Records(ctx context.Context) ([]source.Record, error) {
	var all []source.Record
	for _, res := range c.resources {
		recs, err := c.FetchResource(ctx, res)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// FetchResource lists one resource, following next-page links.
func (c *Client) FetchResource(ctx context.Context, resource string) ([]source.Record, error) {
	kind := kindFor(resource)
	next := c.baseURL + "/" + strings.TrimLeft(resource, "/")

	var out []source.Record
	for range maxPages {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		raw, link, err := decodeList(body)
		if err != nil {
			return nil, fmt.Errorf("resource: parsing %s: %w", resource, err)
		}
		for _, r := range raw {
			rec, err := decodeRecord(r)
			if err != nil {
				log.WithError(err).WithField("resource", resource).Debug("skipping undecodable record")
				continue
			}
			if _, ok := rec["kind"]; !ok && kind != "" {
				rec["kind"] = kind
			}
			out = append(out, rec)
		}

		if link == "" {
			return out, nil
		}
		next, err = c.resolve(next, link)
		if err != nil {
			return nil, err
		}
	}
	log.WithField("resource", resource).Warn("page limit reached, results truncated")
	return out, nil
}

func (c *Client) resolve(current, link string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("resource: bad url %q: %w", current, err)
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("resource: bad next link %q: %w", link, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// decodeList accepts a bare array or a {data|items, next} envelope.
func decodeList(body []byte) ([]json.RawMessage, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, "", err
		}
		return list, "", nil
	}
	var p page
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, "", err
	}
	return p.records(), p.next(), nil
}

func decodeRecord(raw json.RawMessage) (source.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec source.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("null record")
	}
	return rec, nil
}

// get performs an authenticated GET through the circuit breaker.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("resource: creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/portsignal/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("resource: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("resource: reading response: %w", err)
	}
	return body, nil
}
