// Package overlay draws onto captured frames: the finger count picture in
// the top-left corner and the FPS readout.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/finger"
)

// NumAssets is the number of count pictures, one per count 0..5.
const NumAssets = finger.MaxCount + 1

// Default asset canvas.
const (
	DefaultAssetWidth  = 200
	DefaultAssetHeight = 300
)

// DefaultExtensions are tried in order when no extension is configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png"}

var (
	// ErrMissingAsset is returned when a count picture cannot be found or decoded.
	ErrMissingAsset = errors.New("missing finger count asset")

	// ErrCountOutOfRange is returned when a count has no matching asset.
	ErrCountOutOfRange = errors.New("finger count out of range")

	// ErrFrameType is returned when the frame's pixel layout differs from the assets.
	ErrFrameType = errors.New("frame type does not match asset type")
)

// Selector holds the decoded count pictures and composites them onto frames.
type Selector struct {
	assets [NumAssets]gocv.Mat
}

// LoadAssets reads the pictures for counts 0..5 from dir. Files are looked up
// by number ("0.jpg" through "5.jpg"), never by directory listing order.
// With an empty ext each of DefaultExtensions is tried. Pictures are resized
// to width x height; when both are 0 the native size is kept, and when only
// one is 0 the aspect ratio is preserved.
func LoadAssets(dir, ext string, width, height int) (*Selector, error) {
	exts := DefaultExtensions
	if ext != "" {
		exts = []string{ext}
	}

	s := &Selector{}
	for n := 0; n < NumAssets; n++ {
		path, err := findAsset(dir, n, exts)
		if err != nil {
			s.Close()
			return nil, err
		}

		mat, err := loadAsset(path, width, height)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.assets[n] = mat
	}

	return s, nil
}

func findAsset(dir string, n int, exts []string) (string, error) {
	for _, ext := range exts {
		path := filepath.Join(dir, strconv.Itoa(n)+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no file for count %d in %s (tried %v)", ErrMissingAsset, n, dir, exts)
}

func loadAsset(path string, width, height int) (gocv.Mat, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %s: %v", ErrMissingAsset, path, err)
	}

	var out image.Image = img
	if width > 0 || height > 0 {
		out = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	mat, err := gocv.ImageToMatRGB(out)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert %s: %w", path, err)
	}
	return mat, nil
}

// Size returns the width and height of the picture for count n.
func (s *Selector) Size(n int) (int, int) {
	if n < 0 || n >= NumAssets {
		return 0, 0
	}
	return s.assets[n].Cols(), s.assets[n].Rows()
}

// Composite copies the picture for total into frame at the top-left corner,
// covering [0, w) x [0, h). No other pixel is touched. A picture larger than
// the frame is clipped to the frame.
func (s *Selector) Composite(frame *gocv.Mat, total int) error {
	if total < 0 || total >= NumAssets {
		return fmt.Errorf("%w: %d", ErrCountOutOfRange, total)
	}
	if frame == nil || frame.Empty() {
		return nil
	}

	asset := s.assets[total]
	if asset.Type() != frame.Type() {
		return fmt.Errorf("%w: frame %v, asset %v", ErrFrameType, frame.Type(), asset.Type())
	}

	w := min(asset.Cols(), frame.Cols())
	h := min(asset.Rows(), frame.Rows())
	rect := image.Rect(0, 0, w, h)

	dst := frame.Region(rect)
	defer dst.Close()

	src := asset.Region(rect)
	defer src.Close()

	src.CopyTo(&dst)
	return nil
}

// Close releases the decoded pictures.
func (s *Selector) Close() error {
	for i := range s.assets {
		if s.assets[i].Ptr() != nil {
			s.assets[i].Close()
		}
		s.assets[i] = gocv.Mat{}
	}
	return nil
}
