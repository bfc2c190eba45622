// Package telemetry polls the live position feed at a fixed cadence.
//
// There is no retry backoff: the interval timer is the retry mechanism. Each
// request is tagged with a sequence number so a slow response that resolves
// after a newer one can be recognized as superseded and discarded by the
// consumer.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Default feed: the where-the-ISS-at live position API.
const defaultFeedURL = "https://api.wheretheiss.at/v1/satellites/25544"

// LiveFix is one live position record. Immutable once received; a new fix
// supersedes it, the two are never merged.
type LiveFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"` // km
	Velocity  float64   `json:"velocity"` // km/h
	Timestamp time.Time `json:"timestamp"`
}

// FeedError reports an unreachable feed or a bad status. Recoverable: the
// next poll cycle retries, and the last good fix stays in effect.
type FeedError struct {
	Err error
}

func (e *FeedError) Error() string {
	return "telemetry feed: " + e.Err.Error()
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one poll cycle. Exactly one of Fix and Err is set,
// except for deliberately cancelled requests, which are never delivered.
type Result struct {
	Seq uint64
	Fix *LiveFix
	Err error
}

// feedRecord is the wire shape of the live feed.
type feedRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Velocity  float64 `json:"velocity"`
	Timestamp int64   `json:"timestamp"`
}

// Poller repeatedly requests the current live position.
type Poller struct {
	feedURL    string
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPoller creates a Poller for the given feed URL and cadence.
func NewPoller(feedURL string, interval time.Duration, logger *slog.Logger) *Poller {
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		feedURL:  feedURL,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Interval returns the poll cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls until ctx is cancelled, delivering each outcome on out. One poll
// fires immediately, then one per interval regardless of prior outcome. Each
// request runs in its own goroutine so a hung response cannot stall the
// cadence; the sequence number lets the consumer drop out-of-order results.
func (p *Poller) Run(ctx context.Context, out chan<- Result) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var seq uint64
	poll := func() {
		seq++
		go p.pollOnce(ctx, seq, out)
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// pollOnce performs a single feed request and delivers the result. A request
// cancelled by teardown resolves silently: it is not an error and must not
// mutate anything.
func (p *Poller) pollOnce(ctx context.Context, seq uint64, out chan<- Result) {
	fix, err := p.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		select {
		case out <- Result{Seq: seq, Err: &FeedError{Err: err}}:
		case <-ctx.Done():
		}
		return
	}

	select {
	case out <- Result{Seq: seq, Fix: fix}:
	case <-ctx.Done():
	}
}

// Fetch requests the current live position once.
func (p *Poller) Fetch(ctx context.Context) (*LiveFix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching live position: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, p.feedURL)
	}

	var rec feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding live position: %w", err)
	}

	return &LiveFix{
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Altitude:  rec.Altitude,
		Velocity:  rec.Velocity,
		Timestamp: time.Unix(rec.Timestamp, 0).UTC(),
	}, nil
}
