// Package engine is the live-synchronization core: a single goroutine that
// owns the trail, camera mode, element set and render snapshot, driven by
// the poll/refresh/resample/terminator timers plus user-interaction events.
//
// Network fetches and prediction scans run in helper goroutines and report
// back as messages tagged with a sequence or generation number; the loop
// discards anything superseded before applying it. That is the whole
// locking story: state has one owner, everything else passes messages.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sky/skywatch/internal/camera"
	"github.com/sky/skywatch/internal/ephemeris"
	"github.com/sky/skywatch/internal/footprint"
	"github.com/sky/skywatch/internal/metrics"
	"github.com/sky/skywatch/internal/orbit"
	"github.com/sky/skywatch/internal/passes"
	"github.com/sky/skywatch/internal/propagate"
	"github.com/sky/skywatch/internal/sun"
	"github.com/sky/skywatch/internal/telemetry"
	"github.com/sky/skywatch/internal/trail"
	"github.com/sky/skywatch/internal/transform"
)

type eventKind int

const (
	evGesture eventKind = iota
	evReset
	evObserver
	evViewport
	evFootprint
)

type event struct {
	kind       eventKind
	loc        Location
	west, east float64
	enabled    bool
}

type elementResult struct {
	es  *ephemeris.ElementSet
	err error
}

type orbitResult struct {
	gen  uint64
	segs []orbit.Segment
	err  error
	took time.Duration
}

type passResult struct {
	gen     uint64
	windows []passes.Window
	err     error
	took    time.Duration
}

// Engine wires the components together and runs the scheduling loop.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	source *ephemeris.Source
	poller *telemetry.Poller

	trailBuf *trail.Buffer
	cam      *camera.Controller

	events  chan event
	results chan any
	snap    atomic.Pointer[Snapshot]

	// Loop-owned state. Only the Run goroutine touches these.
	fix         *telemetry.LiveFix
	updatedAt   time.Time
	lastSeq     uint64
	feedErr     string
	elemErr     string
	orbitSegs   []orbit.Segment
	orbitErr    string
	orbitGen    uint64
	windows     []passes.Window
	passErr     string
	passGen     uint64
	observer    *Location
	footprintOn bool
	fp          *Footprint
	night       *NightShade
	viewWest    float64
	viewEast    float64
	camAction   camera.Action
	camCenter   *Location
}

// New creates an Engine. The snapshot is valid immediately; Run starts the
// timers and the poll cadence.
func New(cfg Config, source *ephemeris.Source, poller *telemetry.Poller, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		poller:   poller,
		trailBuf: trail.NewBuffer(cfg.TrailCap),
		cam:      camera.NewController(),
		events:   make(chan event, 64),
		results:  make(chan any, 16),
		viewWest: -180,
		viewEast: 180,
	}
	e.publish()
	return e
}

// Snapshot returns the current render state. Safe from any goroutine.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// SetObserver validates and applies a new observer location. Invalid
// coordinates return a *LocationError and mutate nothing.
func (e *Engine) SetObserver(lat, lon float64) error {
	loc, err := ParseLocation(lat, lon)
	if err != nil {
		return err
	}
	e.events <- event{kind: evObserver, loc: loc}
	return nil
}

// Gesture reports a user-initiated pan/zoom from the map client.
func (e *Engine) Gesture() {
	e.events <- event{kind: evGesture}
}

// ResetView re-centers on the latest fix and resumes following.
func (e *Engine) ResetView() {
	e.events <- event{kind: evReset}
}

// SetViewport reports the visible longitude range; the terminator
// replication offsets depend on it.
func (e *Engine) SetViewport(west, east float64) {
	e.events <- event{kind: evViewport, west: west, east: east}
}

// SetFootprintOverlay toggles the footprint circle.
func (e *Engine) SetFootprintOverlay(enabled bool) {
	e.events <- event{kind: evFootprint, enabled: enabled}
}

// Run drives the engine until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	pollCh := make(chan telemetry.Result, 8)
	go e.poller.Run(ctx, pollCh)

	refreshTicker := time.NewTicker(e.cfg.ElementRefresh)
	defer refreshTicker.Stop()
	orbitTicker := time.NewTicker(e.cfg.OrbitResample)
	defer orbitTicker.Stop()
	termTicker := time.NewTicker(e.cfg.TerminatorRefresh)
	defer termTicker.Stop()

	// Startup: terminator straight away, elements from the feed (a cached
	// set may already be in the store; the fetch replaces it when it lands),
	// and a first ground track if elements are present.
	e.recomputeTerminator(time.Now().UTC())
	e.startOrbitScan(ctx)
	e.startElementRefresh(ctx)
	e.publish()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return

		case res := <-pollCh:
			e.handlePoll(res)
			e.publish()

		case ev := <-e.events:
			e.handleEvent(ctx, ev)
			e.publish()

		case res := <-e.results:
			e.handleResult(ctx, res)
			e.publish()

		case <-refreshTicker.C:
			e.startElementRefresh(ctx)

		case <-orbitTicker.C:
			e.startOrbitScan(ctx)

		case <-termTicker.C:
			e.recomputeTerminator(time.Now().UTC())
			e.publish()
		}
	}
}

// handlePoll applies one telemetry outcome. Out-of-order or superseded
// results are discarded before touching anything.
func (e *Engine) handlePoll(res telemetry.Result) {
	if res.Seq <= e.lastSeq {
		return
	}
	e.lastSeq = res.Seq

	if res.Err != nil {
		metrics.IncPoll("failure")
		e.feedErr = res.Err.Error()
		e.logger.Warn("telemetry poll failed", "seq", res.Seq, "error", res.Err)
		return
	}

	metrics.IncPoll("success")
	metrics.SetFixAge(0)
	e.feedErr = ""
	e.fix = res.Fix
	e.updatedAt = time.Now().UTC()
	e.trailBuf.Append(res.Fix.Longitude, res.Fix.Latitude)

	// The controller checks its own state here, so a gesture handled
	// earlier in this tick has already moved it to Free and wins.
	action := e.cam.ApplyFix()
	if action != camera.ActionNone {
		e.camAction = action
		e.camCenter = &Location{Latitude: res.Fix.Latitude, Longitude: res.Fix.Longitude}
	}

	if e.footprintOn {
		e.recomputeFootprint()
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev event) {
	switch ev.kind {
	case evGesture:
		e.cam.Gesture()

	case evReset:
		action := e.cam.Reset()
		e.camAction = action
		if e.fix != nil {
			e.camCenter = &Location{Latitude: e.fix.Latitude, Longitude: e.fix.Longitude}
		}

	case evObserver:
		loc := ev.loc
		e.observer = &loc
		e.logger.Info("observer location set", "lat", loc.Latitude, "lon", loc.Longitude)
		e.startPassScan(ctx)

	case evViewport:
		e.viewWest, e.viewEast = ev.west, ev.east
		e.recomputeTerminator(time.Now().UTC())

	case evFootprint:
		e.footprintOn = ev.enabled
		if ev.enabled {
			e.recomputeFootprint()
		} else {
			e.fp = nil
		}
	}
}

func (e *Engine) handleResult(ctx context.Context, res any) {
	switch r := res.(type) {
	case elementResult:
		if r.err != nil {
			metrics.IncElementRefresh("failure")
			e.elemErr = r.err.Error()
			e.logger.Warn("element refresh failed", "error", r.err)
			return
		}
		metrics.IncElementRefresh("success")
		metrics.SetElementAge(0)
		e.elemErr = ""
		// Fresh elements invalidate both prediction products.
		e.startOrbitScan(ctx)
		e.startPassScan(ctx)

	case orbitResult:
		if r.gen != e.orbitGen {
			return // superseded by a newer scan
		}
		metrics.RecordPrediction("orbit", r.took, r.err)
		if r.err != nil {
			// Prior geometry stays visible.
			e.orbitErr = r.err.Error()
			e.logger.Warn("ground track scan failed", "error", r.err)
			return
		}
		e.orbitErr = ""
		e.orbitSegs = r.segs

	case passResult:
		if r.gen != e.passGen {
			return
		}
		metrics.RecordPrediction("passes", r.took, r.err)
		if r.err != nil {
			e.passErr = r.err.Error()
			e.logger.Warn("pass scan failed", "error", r.err)
			return
		}
		e.passErr = ""
		e.windows = r.windows
		e.logger.Info("pass prediction complete", "passes", len(r.windows), "duration_ms", r.took.Milliseconds())
	}
}

// startElementRefresh fetches the element feed off the loop.
func (e *Engine) startElementRefresh(ctx context.Context) {
	go func() {
		es, err := e.source.Refresh(ctx)
		if ctx.Err() != nil {
			return // teardown: resolve as a no-op
		}
		select {
		case e.results <- elementResult{es: es, err: err}:
		case <-ctx.Done():
		}
	}()
}

// startOrbitScan samples the ground track off the loop. The captured element
// pointer stays consistent even if a refresh lands mid-scan.
func (e *Engine) startOrbitScan(ctx context.Context) {
	es := e.source.Store().Get()
	if es == nil {
		return
	}
	e.orbitGen++
	gen := e.orbitGen
	cfg := e.cfg.Orbit

	go func() {
		began := time.Now()
		var segs []orbit.Segment
		prop, err := propagate.New(es.Line1, es.Line2, es.NORADID)
		if err == nil {
			segs, err = orbit.Sample(prop, began.UTC(), cfg)
		}
		select {
		case e.results <- orbitResult{gen: gen, segs: segs, err: err, took: time.Since(began)}:
		case <-ctx.Done():
		}
	}()
}

// startPassScan runs the 24-hour pass prediction off the loop; it is the
// most expensive unit of work and must not starve the timers.
func (e *Engine) startPassScan(ctx context.Context) {
	es := e.source.Store().Get()
	if es == nil || e.observer == nil {
		return
	}
	e.passGen++
	gen := e.passGen
	obs := transform.NewObserver(e.observer.Latitude, e.observer.Longitude, 0)
	cfg := e.cfg.Passes

	go func() {
		began := time.Now()
		var windows []passes.Window
		prop, err := propagate.New(es.Line1, es.Line2, es.NORADID)
		if err == nil {
			windows, err = passes.Predict(ctx, prop, passes.Request{
				Observer: obs,
				Start:    began.UTC(),
				Config:   cfg,
			})
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case e.results <- passResult{gen: gen, windows: windows, err: err, took: time.Since(began)}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) recomputeTerminator(now time.Time) {
	ss := sun.Subsolar(now)
	e.night = &NightShade{
		Subsolar: ss,
		Ring:     sun.TerminatorRing(ss, e.cfg.TerminatorStepDeg),
		Offsets:  sun.ReplicationOffsets(e.viewWest, e.viewEast),
	}
}

func (e *Engine) recomputeFootprint() {
	if e.fix == nil {
		return
	}
	e.fp = &Footprint{
		Latitude:        e.fix.Latitude,
		Longitude:       e.fix.Longitude,
		RadiusKm:        footprint.RadiusKm(e.fix.Altitude, e.cfg.FootprintMinElevDeg),
		MinElevationDeg: e.cfg.FootprintMinElevDeg,
	}
}

// publish rebuilds the immutable snapshot. Camera actions are one-shot:
// they appear in exactly one snapshot and then decay to none.
func (e *Engine) publish() {
	var live *LivePoint
	if e.fix != nil {
		live = &LivePoint{
			Latitude:  e.fix.Latitude,
			Longitude: e.fix.Longitude,
			AltKm:     e.fix.Altitude,
			VelKmh:    e.fix.Velocity,
			Timestamp: e.fix.Timestamp,
		}
	}

	var elems *ElementsInfo
	if es := e.source.Store().Get(); es != nil {
		elems = &ElementsInfo{
			NORADID:   es.NORADID,
			Name:      es.Name,
			Epoch:     es.Epoch,
			FetchedAt: es.FetchedAt,
			Source:    es.Source,
		}
	}

	snap := &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Live:        live,
		UpdatedAt:   e.updatedAt,
		Trail:       e.trailBuf.Points(),
		Orbit:       e.orbitSegs,
		Footprint:   e.fp,
		Night:       e.night,
		Camera: CameraView{
			Mode:   e.cam.State().String(),
			Action: actionString(e.camAction),
			Center: e.camCenter,
		},
		Observer: e.observer,
		Passes:   e.windows,
		Elements: elems,
		Errors: Errors{
			Feed:     e.feedErr,
			Elements: e.elemErr,
			Orbit:    e.orbitErr,
			Passes:   e.passErr,
		},
	}
	e.snap.Store(snap)

	e.camAction = camera.ActionNone
	e.camCenter = nil
}

func actionString(a camera.Action) string {
	switch a {
	case camera.ActionJump:
		return "jump"
	case camera.ActionEase:
		return "ease"
	default:
		return "none"
	}
}
