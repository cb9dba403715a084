package overlay

import (
	"image"
	"image/color"
	"strconv"
	"time"

	"gocv.io/x/gocv"
)

// FPS text style.
var (
	FPSOrigin = image.Pt(10, 70)
	FPSColor  = color.RGBA{R: 255, G: 0, B: 255, A: 0}
)

const (
	fpsScale     = 3
	fpsThickness = 6
)

// FPSCounter measures the instantaneous frame rate between consecutive
// ticks. It is owned by one loop and passed along explicitly.
type FPSCounter struct {
	prev time.Time
}

// Tick records a frame at now and returns 1/(now - previous tick).
// The first tick, or a tick that does not advance time, returns 0.
func (c *FPSCounter) Tick(now time.Time) float64 {
	prev := c.prev
	c.prev = now

	if prev.IsZero() {
		return 0
	}
	elapsed := now.Sub(prev)
	if elapsed <= 0 {
		return 0
	}
	return 1 / elapsed.Seconds()
}

// DrawFPS writes the integer part of fps onto frame.
func DrawFPS(frame *gocv.Mat, fps float64) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.PutText(frame, strconv.Itoa(int(fps)), FPSOrigin, gocv.FontHersheyPlain, fpsScale, FPSColor, fpsThickness)
}
