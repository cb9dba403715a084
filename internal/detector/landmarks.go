// Package detector provides the hand landmark provider and the landmark types
// consumed by the finger classifier.
package detector

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrIncompleteHand is returned when a landmark list does not cover ids 0-20 in order.
var ErrIncompleteHand = errors.New("hand must have exactly 21 landmarks in id order")

// Point3D is a normalized landmark position as reported by the model.
// X and Y are in [0, 1] relative to the frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Landmark is a single keypoint in pixel coordinates, origin top-left,
// y increasing downward.
type Landmark struct {
	ID int
	X  int
	Y  int
}

// LandmarkSet holds the 21 pixel landmarks of one hand, indexed by id.
// It is rebuilt every frame and never carried across frames.
type LandmarkSet struct {
	points [NumLandmarks]Landmark
}

// NewLandmarkSet validates raw provider output. The list must contain
// exactly NumLandmarks entries whose ids match their position.
func NewLandmarkSet(lms []Landmark) (*LandmarkSet, error) {
	if len(lms) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d", ErrIncompleteHand, len(lms))
	}

	set := &LandmarkSet{}
	for i, lm := range lms {
		if lm.ID != i {
			return nil, fmt.Errorf("%w: landmark %d has id %d", ErrIncompleteHand, i, lm.ID)
		}
		set.points[i] = lm
	}
	return set, nil
}

// At returns the landmark with the given id. It panics on ids outside 0-20.
func (s *LandmarkSet) At(id int) Landmark {
	return s.points[id]
}

// Set replaces the pixel position of landmark id.
func (s *LandmarkSet) Set(id, x, y int) {
	s.points[id] = Landmark{ID: id, X: x, Y: y}
}

// Landmarks returns a copy of the landmarks in id order.
func (s *LandmarkSet) Landmarks() []Landmark {
	out := make([]Landmark, NumLandmarks)
	copy(out, s.points[:])
	return out
}

// Pixels converts the normalized landmarks to pixel coordinates of a
// width x height frame. Coordinates are truncated toward zero, matching the
// usual int(x * width) conversion.
func (h *HandLandmarks) Pixels(width, height int) *LandmarkSet {
	set := &LandmarkSet{}
	for i, p := range h.Points {
		set.Set(i, int(p.X*float64(width)), int(p.Y*float64(height)))
	}
	return set
}
