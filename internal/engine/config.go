package engine

import (
	"time"

	"github.com/sky/skywatch/internal/footprint"
	"github.com/sky/skywatch/internal/orbit"
	"github.com/sky/skywatch/internal/passes"
)

// Config holds the engine cadences and prediction parameters. Every value
// has an override; zero values take the defaults below.
type Config struct {
	TrailCap            int           // live-position trail length (default 200)
	ElementRefresh      time.Duration // element feed cadence (default 6h)
	OrbitResample       time.Duration // ground-track recompute cadence (default 10m)
	TerminatorRefresh   time.Duration // terminator recompute cadence (default 5m)
	TerminatorStepDeg   float64       // ring sampling step (default 2°)
	FootprintMinElevDeg float64       // overlay elevation threshold (default 20°)
	Orbit               orbit.Config
	Passes              passes.Config
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TrailCap:            200,
		ElementRefresh:      6 * time.Hour,
		OrbitResample:       10 * time.Minute,
		TerminatorRefresh:   5 * time.Minute,
		TerminatorStepDeg:   2,
		FootprintMinElevDeg: footprint.DefaultMinElevationDeg,
		Orbit:               orbit.DefaultConfig(),
		Passes:              passes.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TrailCap <= 0 {
		c.TrailCap = d.TrailCap
	}
	if c.ElementRefresh <= 0 {
		c.ElementRefresh = d.ElementRefresh
	}
	if c.OrbitResample <= 0 {
		c.OrbitResample = d.OrbitResample
	}
	if c.TerminatorRefresh <= 0 {
		c.TerminatorRefresh = d.TerminatorRefresh
	}
	if c.TerminatorStepDeg <= 0 {
		c.TerminatorStepDeg = d.TerminatorStepDeg
	}
	if c.FootprintMinElevDeg <= 0 {
		c.FootprintMinElevDeg = d.FootprintMinElevDeg
	}
	return c
}
