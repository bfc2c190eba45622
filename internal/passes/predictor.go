// Package passes predicts visibility windows of the tracked object over an
// observer location.
//
// The scan is a fixed-step elevation sweep with a rising/falling edge
// detector on the minimum-elevation threshold. Results are regenerated
// wholesale whenever the observer or the element set changes, never updated
// incrementally. A pass still open when the lookahead ends is discarded: its
// true end is unknown, and the next wholesale run emits it once it closes
// inside the window.
package passes

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sky/skywatch/internal/propagate"
	"github.com/sky/skywatch/internal/transform"
)

// Config holds the scan parameters.
type Config struct {
	Lookahead       time.Duration // default 24 h
	Step            time.Duration // default 60 s
	MinElevationDeg float64       // default 10°
	MaxPasses       int           // default 5
}

// DefaultConfig returns the standard 24-hour scan.
func DefaultConfig() Config {
	return Config{
		Lookahead:       24 * time.Hour,
		Step:            60 * time.Second,
		MinElevationDeg: 10,
		MaxPasses:       5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Lookahead <= 0 {
		c.Lookahead = d.Lookahead
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = d.MaxPasses
	}
	return c
}

// Window is one contiguous interval with the object above the threshold.
type Window struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds float64   `json:"duration_seconds"`
	MaxElevationDeg float64   `json:"max_elevation_deg"` // rounded to one decimal
}

// Request holds the parameters for one prediction run.
type Request struct {
	Observer transform.Observer
	Start    time.Time
	Config   Config
}

// Predict scans from req.Start over the lookahead window and returns the
// visibility windows in chronological order. The scan stops at the pass cap
// or the end of the window, whichever comes first. An empty result is not an
// error; a scan in which every sample fails is.
func Predict(ctx context.Context, prop *propagate.Propagator, req Request) ([]Window, error) {
	cfg := req.Config.withDefaults()
	steps := int(cfg.Lookahead/cfg.Step) + 1

	var (
		windows   []Window
		wasAbove  bool
		passStart time.Time
		maxElev   float64
		usable    int
	)

	for i := 0; i < steps && len(windows) < cfg.MaxPasses; i++ {
		if ctx.Err() != nil {
			return windows, ctx.Err()
		}

		t := req.Start.Add(time.Duration(i) * cfg.Step)

		elev, err := elevationAt(prop, req.Observer, t)
		if err != nil {
			// Propagator failure at one sample: skip it, keep scanning.
			continue
		}
		usable++

		above := elev >= cfg.MinElevationDeg

		if above && !wasAbove {
			// Rising edge: open a candidate window.
			passStart = t
			maxElev = elev
		}

		if above && elev > maxElev {
			maxElev = elev
		}

		if !above && wasAbove {
			// Falling edge: close the window.
			windows = append(windows, Window{
				Start:           passStart,
				End:             t,
				DurationSeconds: t.Sub(passStart).Seconds(),
				MaxElevationDeg: math.Round(maxElev*10) / 10,
			})
		}

		wasAbove = above
	}

	// A window still open at the scan boundary is dropped, not emitted.

	if usable == 0 {
		return nil, fmt.Errorf("pass scan produced no usable samples over %d steps", steps)
	}
	return windows, nil
}

// elevationAt computes the observer's elevation angle to the object at t.
func elevationAt(prop *propagate.Propagator, obs transform.Observer, t time.Time) (float64, error) {
	ecef, err := prop.ECEFAt(t)
	if err != nil {
		return 0, err
	}
	la := transform.ECEFToLookAngles(obs, ecef)
	return la.ElevationDeg, nil
}
