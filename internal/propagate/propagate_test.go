package propagate

import (
	"math"
	"strings"
	"testing"
	"time"
)

// Real ISS element set (epoch Feb 14 2025), valid near its epoch.
const (
	issLine1 = "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993"
	issLine2 = "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		line1  string
		line2  string
		errSub string
	}{
		{"empty lines", "", "", "length"},
		{"short line1", "1 25544U", issLine2, "length"},
		{"short line2", issLine1, "2 25544", "length"},
		{"swapped lines", issLine2, issLine1, "must start"},
		{"wrong marker", strings.Replace(issLine1, "1 ", "3 ", 1), issLine2, "must start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.line1, tt.line2, 25544)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not mention %q", err, tt.errSub)
			}
		})
	}
}

func TestNewISS(t *testing.T) {
	prop, err := New(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prop.NORADID() != 25544 {
		t.Errorf("NORADID = %d, want 25544", prop.NORADID())
	}
}

// TestAtNearEpoch propagates close to the element epoch and sanity-checks the
// geometry: LEO position magnitude and a sub-point bounded by the orbital
// inclination.
func TestAtNearEpoch(t *testing.T) {
	prop, err := New(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	epoch := time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC)

	for _, offset := range []time.Duration{0, time.Hour, 12 * time.Hour, 24 * time.Hour} {
		at := epoch.Add(offset)

		teme, err := prop.At(at)
		if err != nil {
			t.Fatalf("At(%v): %v", at, err)
		}
		mag := math.Sqrt(teme.X*teme.X + teme.Y*teme.Y + teme.Z*teme.Z)
		if mag < 6700 || mag > 6900 {
			t.Errorf("At(%v): magnitude %.1f km outside ISS orbit range", at, mag)
		}

		geo, err := prop.GeodeticAt(at)
		if err != nil {
			t.Fatalf("GeodeticAt(%v): %v", at, err)
		}
		// Geodetic latitude can exceed the 51.64° inclination slightly.
		if math.Abs(geo.LatDeg) > 52.0 {
			t.Errorf("GeodeticAt(%v): latitude %.4f exceeds inclination bound", at, geo.LatDeg)
		}
		if geo.LonDeg < -180 || geo.LonDeg > 180 {
			t.Errorf("GeodeticAt(%v): longitude %.4f out of range", at, geo.LonDeg)
		}
		if geo.AltKm < 350 || geo.AltKm > 500 {
			t.Errorf("GeodeticAt(%v): altitude %.1f km outside ISS range", at, geo.AltKm)
		}
	}
}
