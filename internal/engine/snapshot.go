package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/sky/skywatch/internal/orbit"
	"github.com/sky/skywatch/internal/passes"
	"github.com/sky/skywatch/internal/sun"
	"github.com/sky/skywatch/internal/trail"
)

// Location is a validated observer position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationError reports invalid manual coordinates. Surfaced immediately;
// nothing is mutated.
type LocationError struct {
	Reason string
}

func (e *LocationError) Error() string {
	return "invalid location: " + e.Reason
}

// ParseLocation validates a manual observer position against
// [-90,90]×[-180,180].
func ParseLocation(lat, lon float64) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, &LocationError{Reason: fmt.Sprintf("latitude %v out of range [-90, 90]", lat)}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, &LocationError{Reason: fmt.Sprintf("longitude %v out of range [-180, 180]", lon)}
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

// LivePoint is the current live position as the map draws it.
type LivePoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AltKm     float64   `json:"alt_km"`
	VelKmh    float64   `json:"vel_kmh"`
	Timestamp time.Time `json:"timestamp"`
}

// Footprint is the visibility circle overlay: center + radius.
type Footprint struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	RadiusKm        float64 `json:"radius_km"`
	MinElevationDeg float64 `json:"min_elevation_deg"`
}

// NightShade is the terminator geometry: one canonical ring plus the
// longitude offsets a wrapping renderer replicates it at. A non-wrapping
// renderer consumes the ring alone.
type NightShade struct {
	Subsolar sun.Point   `json:"subsolar"`
	Ring     []sun.Point `json:"ring"`
	Offsets  []float64   `json:"offsets"`
}

// CameraView is the view command for the render side.
type CameraView struct {
	Mode   string    `json:"mode"`             // uncentered | following | free
	Action string    `json:"action"`           // none | jump | ease
	Center *Location `json:"center,omitempty"` // set when Action is jump or ease
}

// ElementsInfo describes the element set predictions are based on.
type ElementsInfo struct {
	NORADID   int       `json:"norad_id"`
	Name      string    `json:"name,omitempty"`
	Epoch     time.Time `json:"epoch"`
	FetchedAt time.Time `json:"fetched_at"`
	Source    string    `json:"source"`
}

// Errors carries the non-fatal banner messages, one slot per failure class.
// Empty string means healthy.
type Errors struct {
	Feed     string `json:"feed,omitempty"`
	Elements string `json:"elements,omitempty"`
	Orbit    string `json:"orbit,omitempty"`
	Passes   string `json:"passes,omitempty"`
}

// Snapshot is the immutable render state handed to the map client. The
// engine builds a fresh one after every handled message; readers never see
// engine-owned slices.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Live        *LivePoint      `json:"live,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
	Trail       []trail.Point   `json:"trail"`
	Orbit       []orbit.Segment `json:"orbit,omitempty"`
	Footprint   *Footprint      `json:"footprint,omitempty"`
	Night       *NightShade     `json:"night,omitempty"`
	Camera      CameraView      `json:"camera"`
	Observer    *Location       `json:"observer,omitempty"`
	Passes      []passes.Window `json:"passes"`
	Elements    *ElementsInfo   `json:"elements,omitempty"`
	Errors      Errors          `json:"errors"`
}
