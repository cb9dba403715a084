// Package capture reads frames from a webcam through OpenCV.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Requested resolution when none is configured.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned by ReadFrame before Open or after Close.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrReadFailed means the device delivered no frame. It is transient;
	// the loop retries on the next iteration.
	ErrReadFailed = errors.New("failed to read frame from camera")
)

// Camera is a frame source. ReadFrame hands ownership of the Mat to the
// caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Options selects the device and the resolution to ask it for.
type Options struct {
	Index  int
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Device is a Camera backed by gocv.VideoCapture.
type Device struct {
	opts Options

	mu     sync.Mutex
	vc     *gocv.VideoCapture
	width  int
	height int
}

// NewDevice returns an unopened device. Non-positive sizes fall back to
// 640x480.
func NewDevice(opts Options) *Device {
	return &Device{opts: opts.withDefaults()}
}

// Open starts capture. Drivers are free to ignore the requested size; Size
// reports what was negotiated.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.opts.Index)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.opts.Index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: %w", d.opts.Index, ErrCameraNotOpen)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.opts.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.opts.Height))

	d.vc = vc
	d.width = int(vc.Get(gocv.VideoCaptureFrameWidth))
	d.height = int(vc.Get(gocv.VideoCaptureFrameHeight))
	return nil
}

// Close stops capture. Closing an unopened device is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}

// ReadFrame grabs the next frame.
func (d *Device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if !d.vc.Read(&mat) {
		mat.Close()
		return nil, ErrReadFailed
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: empty frame", ErrReadFailed)
	}
	return &mat, nil
}

// IsOpen reports whether capture is running.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vc != nil
}

// Size returns the negotiated frame size, or the requested one before Open.
func (d *Device) Size() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil || d.width <= 0 || d.height <= 0 {
		return d.opts.Width, d.opts.Height
	}
	return d.width, d.height
}
