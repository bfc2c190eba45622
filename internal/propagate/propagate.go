// Package propagate wraps SGP4 orbit propagation for the single tracked
// object.
//
// SGP4 library: github.com/joshuaferrara/go-satellite — pure Go, explicit
// TEME output, battle-tested. Propagate() takes the Satellite by value so
// SGP4 error codes never reach the caller; failures are detected instead by
// checking the output for NaN/Inf and unreasonable position magnitudes.
package propagate

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/sky/skywatch/internal/transform"
)

// Propagator advances one element set to positions at arbitrary times.
type Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// New creates a Propagator from two TLE lines.
// Returns an error if the lines are malformed or SGP4 fails to initialize.
//
// Lines are pre-validated because go-satellite calls log.Fatal on garbage
// input, which would kill the process.
func New(line1, line2 string, noradID int) (*Propagator, error) {
	if err := validateLines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid elements for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &Propagator{sat: sat, noradID: noradID}, nil
}

func validateLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// At computes the TEME position (km) at the given UTC time.
func (p *Propagator) At(t time.Time) (transform.PositionTEME, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
	}

	// Position magnitude should sit between LEO and well past GEO.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, mag)
	}

	return transform.PositionTEME{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}

// GeodeticAt propagates to t and converts the result to geodetic coordinates.
func (p *Propagator) GeodeticAt(t time.Time) (transform.GeoPoint, error) {
	teme, err := p.At(t)
	if err != nil {
		return transform.GeoPoint{}, err
	}
	ecef := transform.TEMEToECEF(teme, t)
	return transform.ECEFToGeodetic(ecef), nil
}

// ECEFAt propagates to t and rotates the result into ECEF.
func (p *Propagator) ECEFAt(t time.Time) (transform.PositionECEF, error) {
	teme, err := p.At(t)
	if err != nil {
		return transform.PositionECEF{}, err
	}
	return transform.TEMEToECEF(teme, t), nil
}

// NORADID returns the catalog number this propagator was built for.
func (p *Propagator) NORADID() int {
	return p.noradID
}
