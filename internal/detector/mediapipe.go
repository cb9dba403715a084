package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// IdleTimeout is how long the service may sit unused before it is stopped.
// The next Detect call restarts it.
const IdleTimeout = 30 * time.Second

const scriptName = "mediapipe_service.py"

// ErrScriptNotFound is returned when mediapipe_service.py cannot be located.
var ErrScriptNotFound = errors.New(scriptName + " not found")

// MediaPipeDetector runs scripts/mediapipe_service.py as a child process and
// exchanges one JPEG frame for one JSON reply per Detect call.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	pythonPath string

	mu   sync.Mutex
	svc  *service
	idle *time.Timer
}

// NewMediaPipeDetector resolves the script and interpreter. The child is
// started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = firstExisting(searchPaths(filepath.Join("scripts", scriptName)))
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptNotFound, err)
	}

	python := config.PythonPath
	if python == "" {
		python = firstExisting(searchPaths(filepath.Join("venv", "bin", "python")))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: script,
		pythonPath: python,
	}, nil
}

// Detect sends the frame to the service and returns every hand it found.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if d.svc == nil {
		svc, err := startService(d.pythonPath, d.serviceArgs())
		if err != nil {
			return nil, fmt.Errorf("mediapipe service: %w", err)
		}
		d.svc = svc
	}

	line, err := d.svc.exchange(buf.GetBytes())
	if err != nil {
		// the child is gone or out of sync; restart on the next call
		d.stopLocked()
		return nil, err
	}
	d.touchLocked()

	return parseResponse(line)
}

// Close stops the service if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) serviceArgs() []string {
	return []string{
		d.scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	return err
}

func (d *MediaPipeDetector) touchLocked() {
	if d.idle != nil {
		d.idle.Stop()
	}
	d.idle = time.AfterFunc(IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}

// searchPaths lists where rel may live: the working directory and its
// parents, next to the executable, and under ~/.mudra.
func searchPaths(rel string) []string {
	paths := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join("..", "..", rel),
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mudra", rel))
	}
	return paths
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonResponse struct {
	Hands []jsonHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

// parseResponse decodes one service reply. A hand that does not carry all
// 21 points is rejected rather than zero-filled.
func parseResponse(line []byte) ([]HandLandmarks, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", resp.Error)
	}

	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for i, h := range resp.Hands {
		if len(h.Points) != NumLandmarks {
			return nil, fmt.Errorf("hand %d: %w: got %d points", i, ErrIncompleteHand, len(h.Points))
		}
		hand := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		for j, p := range h.Points {
			hand.Points[j] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
		}
		hands = append(hands, hand)
	}
	return hands, nil
}
