package detector

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// HandConnections lists the landmark pairs joined when drawing a hand
// skeleton, in MediaPipe's hand topology.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Drawing style for Render.
var (
	ConnectionColor = color.RGBA{R: 224, G: 224, B: 224, A: 0}
	LandmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

const (
	connectionThickness = 2
	landmarkRadius      = 3
)

// Render draws the hand's connections and landmarks onto frame in place.
// Landmarks are scaled to the frame's own size.
func Render(frame *gocv.Mat, hand *HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}

	set := hand.Pixels(frame.Cols(), frame.Rows())

	for _, c := range HandConnections {
		a, b := set.At(c[0]), set.At(c[1])
		gocv.Line(frame, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), ConnectionColor, connectionThickness)
	}

	// filled dots on top of the lines
	for _, lm := range set.Landmarks() {
		gocv.Circle(frame, image.Pt(lm.X, lm.Y), landmarkRadius, LandmarkColor, -1)
	}
}
