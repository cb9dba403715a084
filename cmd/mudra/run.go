package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/overlay"
)

// runLoop acquires every resource the mode needs, then hands them to the
// frame loop. Any acquisition failure is returned before a frame is read.
func runLoop(ctx context.Context, mode app.Mode, cfg config.Config) error {
	log.Init(cfg.Log.Level)
	logger := log.With("session", uuid.NewString(), "mode", mode.String())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var selector *overlay.Selector
	if mode == app.ModeCount {
		s, err := overlay.LoadAssets(cfg.Assets.Dir, cfg.Assets.Ext, cfg.Assets.Width, cfg.Assets.Height)
		if err != nil {
			return fmt.Errorf("load count pictures: %w", err)
		}
		defer s.Close()
		selector = s
		w, h := s.Size(0)
		logger.Info("count pictures loaded", "dir", cfg.Assets.Dir, "width", w, "height", h)
	}

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(mode == app.ModeCount))
	if err != nil {
		return fmt.Errorf("start landmark provider: %w", err)
	}

	cam := capture.NewDevice(capture.Options{
		Index:  cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	})
	window := gocv.NewWindow(cfg.Window.Title)

	loop, err := app.New(app.Config{
		Mode:     mode,
		Camera:   cam,
		Detector: det,
		Display:  window,
		Overlay:  selector,
		Metrics:  metrics.New(),
		Logger:   logger,
		ExitKey:  cfg.ExitKey(),
	})
	if err != nil {
		window.Close()
		det.Close()
		return err
	}

	logger.Info("starting", "camera", cfg.Camera.Device, "width", cfg.Camera.Width, "height", cfg.Camera.Height)
	return loop.Run(ctx)
}
