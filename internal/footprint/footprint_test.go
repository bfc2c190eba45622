package footprint

import (
	"math"
	"testing"
)

// TestRadiusKnownValues checks the formula at ISS altitude for both the
// horizon-ish pass threshold and the overlay threshold.
func TestRadiusKnownValues(t *testing.T) {
	tests := []struct {
		name        string
		altKm       float64
		minElevDeg  float64
		wantKm      float64
		toleranceKm float64
	}{
		{"ISS at 10 deg", 420, 10, 1389.4, 2},
		{"ISS at 20 deg", 420, 20, 908.1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RadiusKm(tt.altKm, tt.minElevDeg)
			if math.Abs(got-tt.wantKm) > tt.toleranceKm {
				t.Errorf("RadiusKm(%v, %v) = %.1f, want %.1f ± %.0f", tt.altKm, tt.minElevDeg, got, tt.wantKm, tt.toleranceKm)
			}
		})
	}
}

// Degenerate inputs collapse to zero rather than going negative or NaN.
func TestRadiusDegenerate(t *testing.T) {
	if got := RadiusKm(0, 10); got != 0 {
		t.Errorf("RadiusKm(0, 10) = %v, want 0", got)
	}
	if got := RadiusKm(420, 90); math.Abs(got) > 1e-9 {
		t.Errorf("RadiusKm(420, 90) = %v, want 0", got)
	}
	if got := RadiusKm(0, 0); got != 0 {
		t.Errorf("RadiusKm(0, 0) = %v, want 0", got)
	}
}

// Raising the altitude grows the circle; raising the threshold shrinks it.
func TestRadiusMonotonic(t *testing.T) {
	prev := RadiusKm(200, 10)
	for alt := 400.0; alt <= 2000; alt += 200 {
		cur := RadiusKm(alt, 10)
		if cur <= prev {
			t.Errorf("RadiusKm(%v, 10) = %.1f not above RadiusKm at lower altitude %.1f", alt, cur, prev)
		}
		prev = cur
	}

	prev = RadiusKm(420, 0)
	for elev := 10.0; elev <= 80; elev += 10 {
		cur := RadiusKm(420, elev)
		if cur >= prev {
			t.Errorf("RadiusKm(420, %v) = %.1f not below RadiusKm at lower threshold %.1f", elev, cur, prev)
		}
		prev = cur
	}
}

// The function is pure: same inputs, same output, no matter how often.
func TestRadiusDeterministic(t *testing.T) {
	a := RadiusKm(421.7, DefaultMinElevationDeg)
	for i := 0; i < 100; i++ {
		if b := RadiusKm(421.7, DefaultMinElevationDeg); b != a {
			t.Fatalf("RadiusKm varied between calls: %v then %v", a, b)
		}
	}
}
