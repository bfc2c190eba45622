package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sky/skywatch/internal/ephemeris"
	"github.com/sky/skywatch/internal/footprint"
	"github.com/sky/skywatch/internal/passes"
	"github.com/sky/skywatch/internal/propagate"
	"github.com/sky/skywatch/internal/sun"
	"github.com/sky/skywatch/internal/transform"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fetcher := ephemeris.NewFetcher(os.Getenv("SKYWATCH_ELEMENT_SOURCE_URL"))
	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		fmt.Println("ERROR fetching elements:", err)
		os.Exit(1)
	}

	es, err := ephemeris.Extract(string(raw))
	if err != nil {
		fmt.Println("ERROR extracting elements:", err)
		os.Exit(1)
	}
	fmt.Printf("Element set: %s (NORAD %d) epoch %v\n", es.Name, es.NORADID, es.Epoch)

	prop, err := propagate.New(es.Line1, es.Line2, es.NORADID)
	if err != nil {
		fmt.Println("ERROR initializing propagator:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	geo, err := prop.GeodeticAt(now)
	if err != nil {
		fmt.Println("ERROR propagating:", err)
		os.Exit(1)
	}
	fmt.Printf("Subpoint now: lat=%.4f lon=%.4f alt=%.1fkm\n", geo.LatDeg, geo.LonDeg, geo.AltKm)
	fmt.Printf("Footprint radius (%.0f° min elevation): %.1fkm\n",
		footprint.DefaultMinElevationDeg,
		footprint.RadiusKm(geo.AltKm, footprint.DefaultMinElevationDeg))

	ss := sun.Subsolar(now)
	fmt.Printf("Subsolar point: lat=%.4f lon=%.4f\n", ss.LatDeg, ss.LonDeg)

	obs := transform.NewObserver(39.7392, -104.9903, 1.609)
	fmt.Printf("Prediction start: %v\n", now)

	windows, err := passes.Predict(ctx, prop, passes.Request{
		Observer: obs,
		Start:    now,
		Config:   passes.DefaultConfig(),
	})
	if err != nil {
		fmt.Println("ERROR predicting passes:", err)
		os.Exit(1)
	}

	fmt.Printf("Passes found: %d\n", len(windows))
	for i, w := range windows {
		fmt.Printf("  pass %d: start=%v maxEl=%.1f° dur=%.0fs\n",
			i, w.Start.Format(time.RFC3339), w.MaxElevationDeg, w.DurationSeconds)
	}
}
