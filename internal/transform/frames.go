// Package transform provides the coordinate-frame conversions the tracking
// engine needs: TEME (the frame SGP4 propagates in) to ECEF, ECEF to geodetic
// latitude/longitude, and ECEF to observer-relative look angles.
//
// The TEME→ECEF rotation uses GMST only, ignoring polar motion and the
// equation of equinoxes. The resulting error is tens of metres, well below
// what a map overlay can show.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const j2000 = 2451545.0

// EarthRadiusKm is the mean Earth radius used for spherical geometry
// (terminator ring, footprint radius).
const EarthRadiusKm = 6371.0

// WGS-84 ellipsoid parameters, in kilometres.
const (
	wgs84A  = 6378.137              // semi-major axis
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// PositionTEME is a satellite position in the TEME frame, in kilometres.
type PositionTEME struct {
	X, Y, Z float64
}

// PositionECEF is a satellite position in the ECEF frame, in kilometres.
type PositionECEF struct {
	X, Y, Z float64
}

// GeoPoint is a geodetic position: degrees latitude/longitude, altitude in
// kilometres above the WGS-84 ellipsoid.
type GeoPoint struct {
	LatDeg, LonDeg, AltKm float64
}

// JulianDate converts a UTC time to Julian Date using the standard
// astronomical algorithm.
func JulianDate(t time.Time) float64 {
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	h := float64(t.Hour())
	min := float64(t.Minute())
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9

	// Treat January/February as months 13/14 of the previous year.
	if m <= 2 {
		y -= 1
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
	jd += (h + min/60.0 + s/3600.0) / 24.0

	return jd
}

// GMST returns Greenwich Mean Sidereal Time in radians for a UTC time,
// using the IAU-82 model (Vallado Eq 3-47).
func GMST(t time.Time) float64 {
	t = t.UTC()
	jd := JulianDate(t)
	tUT1 := (jd - j2000) / 36525.0

	// Seconds of time; 876600h = 3155760000 s.
	gmstSec := 67310.54841 +
		(3155760000.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	gmstSec = math.Mod(gmstSec, 86400.0)
	if gmstSec < 0 {
		gmstSec += 86400.0
	}
	return gmstSec / 86400.0 * 2.0 * math.Pi
}

// TEMEToECEF rotates a TEME position into ECEF at the given UTC time.
func TEMEToECEF(teme PositionTEME, t time.Time) PositionECEF {
	gmst := GMST(t)
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	// R3(GMST) rotation about the Z axis.
	return PositionECEF{
		X: teme.X*cosG + teme.Y*sinG,
		Y: -teme.X*sinG + teme.Y*cosG,
		Z: teme.Z,
	}
}

// ECEFToGeodetic converts an ECEF position (km) to geodetic coordinates using
// the iterative Bowring method. Converges in 2-3 iterations for Earth orbits.
func ECEFToGeodetic(pos PositionECEF) GeoPoint {
	lon := math.Atan2(pos.Y, pos.X)
	p := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)

	lat := math.Atan2(pos.Z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(pos.Z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(pos.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return GeoPoint{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltKm:  alt,
	}
}
