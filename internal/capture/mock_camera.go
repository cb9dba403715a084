package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrEndOfFrames is returned by a non-looping MockCamera once every frame
// has been played.
var ErrEndOfFrames = errors.New("no more frames")

// MockCamera replays a fixed list of frames. Each read returns a clone, so
// the caller may draw on and close it freely.
type MockCamera struct {
	mu sync.Mutex

	frames []*gocv.Mat
	next   int
	loop   bool
	open   bool

	failures int
	reads    int
	opens    int
	closes   int
}

var _ Camera = (*MockCamera)(nil)

// NewMockCamera plays frames in order, wrapping around when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.next = 0
	c.opens++
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.closes++
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if c.failures > 0 {
		c.failures--
		return nil, ErrReadFailed
	}
	if c.next >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrEndOfFrames
		}
		c.next = 0
	}

	m := c.frames[c.next].Clone()
	c.next++
	return &m, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// FailNext makes the next n reads return ErrReadFailed.
func (c *MockCamera) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = n
}

// Reads counts read attempts made while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// OpenCloseCount reports how many times Open and Close were called.
func (c *MockCamera) OpenCloseCount() (opens, closes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens, c.closes
}
