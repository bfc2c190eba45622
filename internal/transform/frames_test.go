package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TestJulianDate verifies the Julian Date calculation against known values.
func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{
			name:     "J2000.0 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
		},
		{
			// Vallado Example 3-15: April 6, 2004, 07:51:28.386 UTC
			name:     "Vallado example date",
			time:     time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC),
			expected: 2453101.827411875,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			diff := math.Abs(got - tt.expected)
			if diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.expected, diff)
			}
		})
	}
}

// TestGMST validates the GMST calculation against the go-satellite library's
// GSTimeFromDate function, which uses the same IAU-82 model.
func TestGMST(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
	}{
		{
			name: "J2000.0 epoch",
			time: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "Vallado example date",
			time: time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC),
		},
		{
			name: "recent date 2026",
			time: time.Date(2026, 8, 27, 4, 1, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			our := GMST(tt.time)
			ref := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)

			diff := math.Abs(our - ref)
			// 1e-8 radians ≈ 0.06 arcsec.
			if diff > 1e-8 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tt.time, our, ref, diff)
			}
		})
	}
}

// TestTEMEToECEF validates the rotation against go-satellite's ECIToECEF,
// which applies the same GMST-only R3 rotation.
func TestTEMEToECEF(t *testing.T) {
	tests := []struct {
		name string
		teme PositionTEME
		time time.Time
	}{
		{
			name: "Vallado example 3-15",
			teme: PositionTEME{X: 5094.18016, Y: 6127.64465, Z: 6380.34453},
			time: time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC),
		},
		{
			name: "LEO equatorial",
			teme: PositionTEME{X: 6778.0, Y: 0.0, Z: 0.0},
			time: time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "LEO polar",
			teme: PositionTEME{X: 0.0, Y: 0.0, Z: 6978.0},
			time: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours := TEMEToECEF(tt.teme, tt.time)

			gmst := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)
			ref := satellite.ECIToECEF(
				satellite.Vector3{X: tt.teme.X, Y: tt.teme.Y, Z: tt.teme.Z},
				gmst,
			)

			// Tolerance 1 metre in km.
			const tol = 1e-3
			if math.Abs(ours.X-ref.X) > tol || math.Abs(ours.Y-ref.Y) > tol || math.Abs(ours.Z-ref.Z) > tol {
				t.Errorf("ECEF mismatch:\n  ours: [%.6f, %.6f, %.6f] km\n  ref:  [%.6f, %.6f, %.6f] km",
					ours.X, ours.Y, ours.Z, ref.X, ref.Y, ref.Z)
			}
		})
	}
}

// TestECEFToGeodetic checks fixed points where the answer is known in closed
// form: on the equator and over the pole.
func TestECEFToGeodetic(t *testing.T) {
	t.Run("equator prime meridian", func(t *testing.T) {
		geo := ECEFToGeodetic(PositionECEF{X: wgs84A + 420, Y: 0, Z: 0})
		if math.Abs(geo.LatDeg) > 1e-6 {
			t.Errorf("latitude = %.8f, want 0", geo.LatDeg)
		}
		if math.Abs(geo.LonDeg) > 1e-6 {
			t.Errorf("longitude = %.8f, want 0", geo.LonDeg)
		}
		if math.Abs(geo.AltKm-420) > 1e-3 {
			t.Errorf("altitude = %.6f km, want 420", geo.AltKm)
		}
	})

	t.Run("north pole", func(t *testing.T) {
		// Polar radius b = a(1-f).
		b := wgs84A * (1 - wgs84F)
		geo := ECEFToGeodetic(PositionECEF{X: 0, Y: 0, Z: b + 100})
		if math.Abs(geo.LatDeg-90) > 1e-6 {
			t.Errorf("latitude = %.8f, want 90", geo.LatDeg)
		}
		if math.Abs(geo.AltKm-100) > 1e-3 {
			t.Errorf("altitude = %.6f km, want 100", geo.AltKm)
		}
	})
}

// TestGeodeticRoundTrip converts observer geodetic coordinates to ECEF and
// back; Bowring iteration should recover them to well under a metre.
func TestGeodeticRoundTrip(t *testing.T) {
	tests := []struct {
		name            string
		lat, lon, altKm float64
	}{
		{"Denver", 39.7392, -104.9903, 1.609},
		{"Sydney", -33.8688, 151.2093, 0.058},
		{"Reykjavik", 64.1466, -21.9426, 0.0},
		{"high latitude", 84.0, 10.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := NewObserver(tt.lat, tt.lon, tt.altKm)
			geo := ECEFToGeodetic(PositionECEF{X: obs.ECEFx, Y: obs.ECEFy, Z: obs.ECEFz})

			if math.Abs(geo.LatDeg-tt.lat) > 1e-6 {
				t.Errorf("latitude = %.8f, want %.4f", geo.LatDeg, tt.lat)
			}
			if math.Abs(geo.LonDeg-tt.lon) > 1e-6 {
				t.Errorf("longitude = %.8f, want %.4f", geo.LonDeg, tt.lon)
			}
			if math.Abs(geo.AltKm-tt.altKm) > 1e-4 {
				t.Errorf("altitude = %.6f km, want %.3f", geo.AltKm, tt.altKm)
			}
		})
	}
}
