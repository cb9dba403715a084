// Package app runs the capture, detect, draw, display loop behind the
// track and count commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	mlog "github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/overlay"
)

// Mode selects what the loop draws on each frame.
type Mode int

const (
	// ModeTrack draws landmarks for every detected hand plus an FPS readout.
	ModeTrack Mode = iota
	// ModeCount counts the first hand's extended fingers and shows the
	// matching picture.
	ModeCount
)

func (m Mode) String() string {
	switch m {
	case ModeTrack:
		return "track"
	case ModeCount:
		return "count"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	// waitKeyDelay is the per-frame key poll in milliseconds.
	waitKeyDelay = 1

	defaultReopenEvery = 30
)

var (
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrNoOverlay is returned by New when count mode has no picture selector.
	ErrNoOverlay = errors.New("count mode requires an overlay selector")
)

// Display shows frames and reports key presses. *gocv.Window satisfies it.
type Display interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
	Close() error
}

// sizer is implemented by cameras that know their negotiated resolution.
type sizer interface {
	Size() (width, height int)
}

// Config holds the collaborators and options for an App.
type Config struct {
	Mode     Mode
	Camera   capture.Camera
	Detector detector.Detector
	Display  Display
	Overlay  *overlay.Selector
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// ExitKey is the key code that stops the loop (default 'q').
	ExitKey int

	// ReopenEvery is how many failed reads on an unopened camera pass
	// between Open retries (default 30).
	ReopenEvery int

	// Now returns the current time; tests pin it.
	Now func() time.Time
}

// App is the single-threaded frame loop.
type App struct {
	mode     Mode
	camera   capture.Camera
	detector detector.Detector
	display  Display
	overlay  *overlay.Selector
	metrics  *metrics.Metrics
	log      *slog.Logger
	exitKey  int
	reopen   int
	now      func() time.Time
}

// New creates an App. The camera, detector and display are required; count
// mode also needs an overlay selector.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Camera == nil:
		return nil, fmt.Errorf("%w: camera", ErrMissingDependency)
	case cfg.Detector == nil:
		return nil, fmt.Errorf("%w: detector", ErrMissingDependency)
	case cfg.Display == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingDependency)
	case cfg.Mode == ModeCount && cfg.Overlay == nil:
		return nil, ErrNoOverlay
	}

	a := &App{
		mode:     cfg.Mode,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		display:  cfg.Display,
		overlay:  cfg.Overlay,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
		exitKey:  cfg.ExitKey,
		reopen:   cfg.ReopenEvery,
		now:      cfg.Now,
	}

	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.log == nil {
		a.log = mlog.L()
	}
	if a.exitKey == 0 {
		a.exitKey = 'q'
	}
	if a.reopen <= 0 {
		a.reopen = defaultReopenEvery
	}
	if a.now == nil {
		a.now = time.Now
	}

	return a, nil
}

// Metrics returns the run's counters.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Run opens the camera and processes frames until the exit key is pressed
// or ctx is cancelled. A camera that fails to open does not stop the loop:
// every iteration counts as a failed read and Open is retried every
// ReopenEvery failed reads. Camera, detector and display are released
// exactly once when Run returns.
func (a *App) Run(ctx context.Context) error {
	defer a.release()

	a.openCamera()
	a.log.Info("frame loop started", "mode", a.mode)

	st := &loopState{}
	for {
		if err := ctx.Err(); err != nil {
			a.log.Info("frame loop interrupted")
			break
		}
		if a.step(st) {
			break
		}
	}

	a.log.Info("frame loop stopped", a.metrics.Summary().LogArgs()...)
	return nil
}

// openCamera tries to start capture and reports whether it succeeded.
func (a *App) openCamera() bool {
	if err := a.camera.Open(); err != nil {
		a.log.Warn("failed to open camera", "error", err)
		return false
	}
	if s, ok := a.camera.(sizer); ok {
		w, h := s.Size()
		a.log.Info("camera opened", "width", w, "height", h)
	}
	return true
}

func (a *App) release() {
	if err := a.camera.Close(); err != nil {
		a.log.Warn("error closing camera", "error", err)
	}
	if err := a.detector.Close(); err != nil {
		a.log.Warn("error closing detector", "error", err)
	}
	if err := a.display.Close(); err != nil {
		a.log.Warn("error closing window", "error", err)
	}
}
