package sun

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeLonDeg(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{45, 45},
		{180, 180},
		{-180, 180},
		{181, -179},
		{-181, 179},
		{360, 0},
		{540, 180},
		{-540, 180},
		{190, -170},
		{-190, 170},
	}

	for _, tt := range tests {
		if got := NormalizeLonDeg(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeLonDeg(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestSubsolarLatitudeBounds samples a full year: the subsolar latitude is
// bounded by the obliquity at all times.
func TestSubsolarLatitudeBounds(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 365; d++ {
		at := start.AddDate(0, 0, d)
		ss := Subsolar(at)
		if math.Abs(ss.LatDeg) > ObliquityDeg+1e-9 {
			t.Errorf("Subsolar(%v).LatDeg = %.4f exceeds obliquity %.4f", at, ss.LatDeg, ObliquityDeg)
		}
		if ss.LonDeg <= -180 || ss.LonDeg > 180 {
			t.Errorf("Subsolar(%v).LonDeg = %.4f out of (-180, 180]", at, ss.LonDeg)
		}
	}
}

// TestSubsolarSeasons checks the declination at the solstices and equinoxes.
// The low-precision model is good to a fraction of a degree.
func TestSubsolarSeasons(t *testing.T) {
	tests := []struct {
		name    string
		time    time.Time
		wantLat float64
		tol     float64
	}{
		{"march equinox", time.Date(2025, 3, 20, 9, 1, 0, 0, time.UTC), 0, 0.5},
		{"june solstice", time.Date(2025, 6, 21, 2, 42, 0, 0, time.UTC), ObliquityDeg, 0.5},
		{"september equinox", time.Date(2025, 9, 22, 18, 19, 0, 0, time.UTC), 0, 0.5},
		{"december solstice", time.Date(2025, 12, 21, 15, 3, 0, 0, time.UTC), -ObliquityDeg, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := Subsolar(tt.time)
			if math.Abs(ss.LatDeg-tt.wantLat) > tt.tol {
				t.Errorf("Subsolar(%v).LatDeg = %.4f, want %.4f ± %.1f", tt.time, ss.LatDeg, tt.wantLat, tt.tol)
			}
		})
	}
}

// At local solar noon the subsolar longitude is near the meridian of the
// clock: 12:00 UTC puts the sun close to longitude 0.
func TestSubsolarNoon(t *testing.T) {
	ss := Subsolar(time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC))
	// Equation of time keeps this within a few degrees of zero.
	if math.Abs(ss.LonDeg) > 5 {
		t.Errorf("Subsolar at 12:00 UTC: LonDeg = %.4f, want within ±5 of 0", ss.LonDeg)
	}
}

func TestTerminatorRing(t *testing.T) {
	ss := Subsolar(time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC))
	ring := TerminatorRing(ss, 2)

	if len(ring) != 181 {
		t.Fatalf("ring length = %d, want 181", len(ring))
	}

	// Closed: first and last bearings coincide.
	first, last := ring[0], ring[len(ring)-1]
	if math.Abs(first.LatDeg-last.LatDeg) > 1e-9 || math.Abs(first.LonDeg-last.LonDeg) > 1e-9 {
		t.Errorf("ring not closed: first=%+v last=%+v", first, last)
	}

	for i, p := range ring {
		if p.LatDeg < -90 || p.LatDeg > 90 {
			t.Errorf("ring[%d].LatDeg = %.4f out of range", i, p.LatDeg)
		}
		if p.LonDeg <= -180 || p.LonDeg > 180 {
			t.Errorf("ring[%d].LonDeg = %.4f out of (-180, 180]", i, p.LonDeg)
		}
	}
}

// Every ring point is 90° of arc from the subsolar point.
func TestTerminatorRingDistance(t *testing.T) {
	ss := Point{LatDeg: 20, LonDeg: -45}
	ring := TerminatorRing(ss, 2)

	lat1 := ss.LatDeg * math.Pi / 180
	lon1 := ss.LonDeg * math.Pi / 180

	for i, p := range ring {
		lat2 := p.LatDeg * math.Pi / 180
		lon2 := p.LonDeg * math.Pi / 180

		cosDist := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
		distDeg := math.Acos(math.Max(-1, math.Min(1, cosDist))) * 180 / math.Pi
		if math.Abs(distDeg-90) > 1e-6 {
			t.Errorf("ring[%d] at %.6f° from subsolar, want 90", i, distDeg)
		}
	}
}

func TestTerminatorRingDefaultStep(t *testing.T) {
	ring := TerminatorRing(Point{}, 0)
	if len(ring) != 181 {
		t.Errorf("ring length with zero step = %d, want 181", len(ring))
	}
}

func TestReplicationOffsets(t *testing.T) {
	tests := []struct {
		name       string
		west, east float64
		want       []float64
	}{
		{"whole world", -180, 180, []float64{-360, 0, 360}},
		{"narrow center", -30, 30, []float64{0}},
		{"west of seam", -300, -100, []float64{-360, 0}},
		{"east of seam", 100, 300, []float64{0, 360}},
		{"swapped bounds", 30, -30, []float64{0}},
		{"far copy only", 400, 500, []float64{360}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplicationOffsets(tt.west, tt.east)
			if len(got) != len(tt.want) {
				t.Fatalf("offsets = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("offsets = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
