package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/overlay"
)

// loopState is everything that survives from one iteration to the next.
type loopState struct {
	fps    overlay.FPSCounter
	frame  int
	misses int
}

// step runs one iteration and reports whether the exit key was pressed.
func (a *App) step(st *loopState) bool {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.metrics.FrameErrors.Inc()
		a.log.Warn("failed to capture frame", "error", err)

		if errors.Is(err, capture.ErrCameraNotOpen) {
			st.misses++
			if st.misses%a.reopen == 0 && a.openCamera() {
				st.misses = 0
			}
		}
		return a.exitPressed()
	}
	defer frame.Close()

	st.frame++
	a.metrics.Frames.Inc()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.metrics.DetectErrors.Inc()
		a.log.Warn("hand detection failed", "frame", st.frame, "error", err)
		hands = nil
	}
	a.metrics.HandsDetected.Add(float64(len(hands)))

	fps := st.fps.Tick(a.now())
	a.metrics.FPS.Set(fps)

	switch a.mode {
	case ModeTrack:
		a.drawHands(frame, hands, st.frame)
		overlay.DrawFPS(frame, fps)
	case ModeCount:
		a.countFingers(frame, hands, st.frame)
	}

	a.display.IMShow(*frame)
	return a.exitPressed()
}

// drawHands renders every detected hand.
func (a *App) drawHands(frame *gocv.Mat, hands []detector.HandLandmarks, n int) {
	for i := range hands {
		hand := &hands[i]
		detector.Render(frame, hand)

		if a.log.Enabled(context.Background(), slog.LevelDebug) {
			set := hand.Pixels(frame.Cols(), frame.Rows())
			a.log.Debug("hand landmarks", "frame", n, "hand", i, "handedness", hand.Handedness, "points", set.Landmarks())
		}
	}
}

// countFingers classifies only the first hand; any others are ignored.
func (a *App) countFingers(frame *gocv.Mat, hands []detector.HandLandmarks, n int) {
	if len(hands) == 0 {
		return
	}

	state := finger.Classify(hands[0].Pixels(frame.Cols(), frame.Rows()))
	total := state.Count()
	a.metrics.ObserveCount(total)

	if err := a.overlay.Composite(frame, total); err != nil {
		a.log.Error("failed to draw count overlay", "frame", n, "total", total, "error", err)
		return
	}

	a.log.Debug("fingers counted", "frame", n, "state", state.String(), "raised", raisedNames(state), "total", total)
}

// raisedNames lists the extended digits, e.g. "index,middle".
func raisedNames(s finger.State) string {
	var names []string
	for d := finger.Thumb; d <= finger.Pinky; d++ {
		if s.Extended(d) {
			names = append(names, d.String())
		}
	}
	return strings.Join(names, ",")
}

func (a *App) exitPressed() bool {
	key := a.display.WaitKey(waitKeyDelay)
	return key >= 0 && key&0xFF == a.exitKey
}
