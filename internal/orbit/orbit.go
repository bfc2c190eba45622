// Package orbit samples the propagator over a short future window to build
// the predicted ground-track polyline.
package orbit

import (
	"fmt"
	"math"
	"time"

	"github.com/sky/skywatch/internal/propagate"
	"github.com/sky/skywatch/internal/sun"
)

// Config holds the sampling window.
type Config struct {
	Lookahead time.Duration // default 90 min
	Step      time.Duration // default 60 s
}

// DefaultConfig returns the standard 90-minute / 60-second window.
func DefaultConfig() Config {
	return Config{
		Lookahead: 90 * time.Minute,
		Step:      60 * time.Second,
	}
}

// Point is a ground-track sample in map order: (longitude, latitude).
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Segment is one contiguous polyline. The sampler guarantees no two
// consecutive points in a segment differ by more than 180° of longitude.
type Segment []Point

// Sample propagates from start over the configured window and converts each
// position to a sub-satellite point. When the track crosses the antimeridian
// (longitude delta above 180° between consecutive samples) the current
// segment is closed and a new one starts, so no segment ever draws a line
// across the map seam.
//
// A sample the propagator fails on is skipped; only a scan with zero usable
// samples is an error.
func Sample(prop *propagate.Propagator, start time.Time, cfg Config) ([]Segment, error) {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 90 * time.Minute
	}
	if cfg.Step <= 0 {
		cfg.Step = 60 * time.Second
	}

	steps := int(cfg.Lookahead/cfg.Step) + 1

	var (
		segments []Segment
		current  Segment
		prevLon  float64
		skipped  int
	)

	for i := 0; i < steps; i++ {
		t := start.Add(time.Duration(i) * cfg.Step)

		geo, err := prop.GeodeticAt(t)
		if err != nil {
			skipped++
			continue
		}

		lon := sun.NormalizeLonDeg(geo.LonDeg)
		if len(current) > 0 && math.Abs(lon-prevLon) > 180 {
			segments = append(segments, current)
			current = nil
		}

		current = append(current, Point{Lon: lon, Lat: geo.LatDeg})
		prevLon = lon
	}

	if len(current) > 0 {
		segments = append(segments, current)
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("ground track scan produced no usable samples (%d steps, %d skipped)", steps, skipped)
	}
	return segments, nil
}
