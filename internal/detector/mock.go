package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls reports how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the mock closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// fingerColumns are the normalized X positions of the index..pinky chains.
var fingerColumns = [4]float64{0.58, 0.50, 0.42, 0.34}

// PoseLandmarks builds a right hand facing the camera with the digits in
// thumb..pinky order raised where extended is true. Raised fingers end
// well above their PIP joint; folded ones curl back below it. A raised
// thumb points toward +X, a folded one is tucked back toward the palm.
func PoseLandmarks(extended [5]bool) HandLandmarks {
	hand := HandLandmarks{Handedness: "Right", Score: 0.95}
	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	hand.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.03}
	if extended[0] {
		hand.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.65, Z: 0.03}
		hand.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.60, Z: 0.03}
	} else {
		hand.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.66, Z: 0.03}
		hand.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.64, Z: 0.03}
	}

	for f, x := range fingerColumns {
		mcp := IndexMCP + 4*f
		hand.Points[mcp] = Point3D{X: x, Y: 0.68}
		if extended[f+1] {
			hand.Points[mcp+1] = Point3D{X: x, Y: 0.55}
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.45}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		} else {
			hand.Points[mcp+1] = Point3D{X: x, Y: 0.58, Z: -0.02}
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.62, Z: -0.04}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.64, Z: -0.04}
		}
	}

	return hand
}

// OpenPalmLandmarks is a hand with all five digits raised.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{true, true, true, true, true})
}

// FistLandmarks is a closed fist.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{})
}

// VictoryLandmarks raises index and middle only.
func VictoryLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, true, false, false})
}
