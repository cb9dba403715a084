package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func solid(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 4, 4, gocv.MatTypeCV8UC3)
}

func TestMockCamera_Playback(t *testing.T) {
	a, b := solid(10), solid(20)
	defer a.Close()
	defer b.Close()

	tests := []struct {
		name    string
		loop    bool
		want    []uint8
		wantErr error
	}{
		{"once", false, []uint8{10, 20}, ErrEndOfFrames},
		{"looping", true, []uint8{10, 20, 10, 20, 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewMockCamera([]*gocv.Mat{&a, &b}, tt.loop)
			if err := cam.Open(); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer cam.Close()

			for i, want := range tt.want {
				m, err := cam.ReadFrame()
				if err != nil {
					t.Fatalf("read %d: %v", i, err)
				}
				if got := m.GetUCharAt(0, 0); got != want {
					t.Errorf("read %d = %d, want %d", i, got, want)
				}
				m.Close()
			}

			if tt.wantErr != nil {
				if _, err := cam.ReadFrame(); !errors.Is(err, tt.wantErr) {
					t.Errorf("read past end = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestMockCamera_ReturnsClones(t *testing.T) {
	src := solid(10)
	defer src.Close()

	cam := NewMockCamera([]*gocv.Mat{&src}, true)
	cam.Open()

	m, err := cam.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	m.SetUCharAt(0, 0, 99)
	m.Close()

	if got := src.GetUCharAt(0, 0); got != 10 {
		t.Errorf("source frame modified: %d", got)
	}
}

func TestMockCamera_FailNext(t *testing.T) {
	src := solid(0)
	defer src.Close()

	cam := NewMockCamera([]*gocv.Mat{&src}, true)
	cam.Open()
	cam.FailNext(2)

	for i := 0; i < 2; i++ {
		if _, err := cam.ReadFrame(); !errors.Is(err, ErrReadFailed) {
			t.Fatalf("read %d: got %v, want ErrReadFailed", i, err)
		}
	}

	m, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("read after failures: %v", err)
	}
	m.Close()

	if cam.Reads() != 3 {
		t.Errorf("Reads() = %d, want 3", cam.Reads())
	}
}

func TestMockCamera_Lifecycle(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("read before Open = %v, want ErrCameraNotOpen", err)
	}
	if cam.Reads() != 0 {
		t.Error("reads while closed should not be counted")
	}

	cam.Open()
	if !cam.IsOpen() {
		t.Error("IsOpen() = false after Open")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfFrames) {
		t.Errorf("empty playback = %v, want ErrEndOfFrames", err)
	}
	cam.Close()

	if opens, closes := cam.OpenCloseCount(); opens != 1 || closes != 1 {
		t.Errorf("opens/closes = %d/%d, want 1/1", opens, closes)
	}
}
