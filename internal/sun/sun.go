// Package sun computes the subsolar point and the day/night terminator ring
// from a low-precision solar position. Accuracy is a fraction of a degree,
// which is indistinguishable at map-overlay scale.
//
// Algorithm: mean longitude and mean anomaly from the day number since
// J2000, ecliptic longitude with the two largest correction terms, constant
// obliquity, then declination and right ascension; the subsolar longitude
// follows from the Greenwich sidereal angle.
package sun

import (
	"math"
	"time"

	"github.com/sky/skywatch/internal/transform"
)

// ObliquityDeg is the obliquity of the ecliptic. Constant: its drift is
// ~0.013°/century, far below the approximation error already accepted here.
const ObliquityDeg = 23.4393

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Point is a (latitude, longitude) sample on the terminator ring, degrees.
type Point struct {
	LatDeg float64 `json:"lat"`
	LonDeg float64 `json:"lon"`
}

// Subsolar returns the point on Earth's surface directly beneath the sun at
// time t. The latitude is bounded by ±ObliquityDeg; the longitude is
// normalized to (-180, 180].
func Subsolar(t time.Time) Point {
	n := transform.JulianDate(t.UTC()) - 2451545.0

	// Mean longitude and mean anomaly of the sun, degrees.
	meanLon := 280.460 + 0.9856474*n
	meanAnom := (357.528 + 0.9856003*n) * degToRad

	// Ecliptic longitude with the equation-of-centre terms.
	eclipticLon := (meanLon + 1.915*math.Sin(meanAnom) + 0.020*math.Sin(2*meanAnom)) * degToRad

	obliquity := ObliquityDeg * degToRad
	declination := math.Asin(math.Sin(obliquity) * math.Sin(eclipticLon))
	rightAscension := math.Atan2(math.Cos(obliquity)*math.Sin(eclipticLon), math.Cos(eclipticLon))

	// Subsolar longitude: where the sun's hour angle from Greenwich is zero.
	gmstDeg := transform.GMST(t) * radToDeg
	lon := NormalizeLonDeg(rightAscension*radToDeg - gmstDeg)

	return Point{
		LatDeg: declination * radToDeg,
		LonDeg: lon,
	}
}

// TerminatorRing samples the locus of points at 90° great-circle distance
// from the subsolar point, every stepDeg of bearing. With stepDeg = 2 the
// ring is 181 points, closed (first and last bearing coincide). All
// longitudes are normalized to (-180, 180].
func TerminatorRing(subsolar Point, stepDeg float64) []Point {
	if stepDeg <= 0 {
		stepDeg = 2
	}

	lat1 := subsolar.LatDeg * degToRad
	lon1 := subsolar.LonDeg * degToRad
	sinLat1 := math.Sin(lat1)
	cosLat1 := math.Cos(lat1)

	n := int(360.0/stepDeg) + 1
	ring := make([]Point, 0, n)

	for i := 0; i < n; i++ {
		bearing := float64(i) * stepDeg * degToRad

		// Destination point at angular distance 90°: sin d = 1, cos d = 0.
		lat2 := math.Asin(cosLat1 * math.Cos(bearing))
		lon2 := lon1 + math.Atan2(math.Sin(bearing)*cosLat1, -sinLat1*math.Sin(lat2))

		ring = append(ring, Point{
			LatDeg: lat2 * radToDeg,
			LonDeg: NormalizeLonDeg(lon2 * radToDeg),
		})
	}

	return ring
}

// ReplicationOffsets returns which of the longitude offsets {-360, 0, +360}
// a horizontally wrapping map needs so the night shading tiles the visible
// range [westDeg, eastDeg] without seams. The canonical ring spans
// (-180, 180]; each offset shifts one world copy.
func ReplicationOffsets(westDeg, eastDeg float64) []float64 {
	if eastDeg < westDeg {
		westDeg, eastDeg = eastDeg, westDeg
	}

	var offsets []float64
	for _, off := range []float64{-360, 0, 360} {
		if off-180 <= eastDeg && off+180 >= westDeg {
			offsets = append(offsets, off)
		}
	}
	if len(offsets) == 0 {
		offsets = []float64{0}
	}
	return offsets
}

// NormalizeLonDeg maps a longitude in degrees to (-180, 180].
func NormalizeLonDeg(lon float64) float64 {
	r := math.Mod(lon+180.0, 360.0)
	if r <= 0 {
		r += 360.0
	}
	return r - 180.0
}
