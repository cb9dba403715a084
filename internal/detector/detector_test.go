package detector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func sequentialLandmarks(n int) []Landmark {
	lms := make([]Landmark, n)
	for i := range lms {
		lms[i] = Landmark{ID: i, X: i * 10, Y: 200 - i*5}
	}
	return lms
}

func TestNewLandmarkSet(t *testing.T) {
	t.Run("accepts 21 landmarks in id order", func(t *testing.T) {
		set, err := NewLandmarkSet(sequentialLandmarks(NumLandmarks))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := set.At(PinkyTip); got.X != 200 || got.Y != 100 {
			t.Errorf("PinkyTip = %+v, want {X:200 Y:100}", got)
		}
	})

	t.Run("rejects wrong cardinality", func(t *testing.T) {
		for _, n := range []int{0, 1, 20, 22} {
			_, err := NewLandmarkSet(sequentialLandmarks(n))
			if !errors.Is(err, ErrIncompleteHand) {
				t.Errorf("n=%d: expected ErrIncompleteHand, got %v", n, err)
			}
		}
	})

	t.Run("rejects out of order ids", func(t *testing.T) {
		lms := sequentialLandmarks(NumLandmarks)
		lms[3], lms[4] = lms[4], lms[3]

		_, err := NewLandmarkSet(lms)
		if !errors.Is(err, ErrIncompleteHand) {
			t.Errorf("expected ErrIncompleteHand, got %v", err)
		}
	})

	t.Run("Landmarks returns a copy", func(t *testing.T) {
		set, _ := NewLandmarkSet(sequentialLandmarks(NumLandmarks))
		lms := set.Landmarks()
		lms[0].X = 999

		if set.At(Wrist).X == 999 {
			t.Error("mutating the returned slice changed the set")
		}
	})
}

func TestHandLandmarks_Pixels(t *testing.T) {
	hand := HandLandmarks{}
	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.5}
	hand.Points[ThumbTip] = Point3D{X: 0.999, Y: 0.0014}
	hand.Points[IndexTip] = Point3D{X: 0.25, Y: 0.75}

	set := hand.Pixels(640, 480)

	tests := []struct {
		id    int
		wantX int
		wantY int
	}{
		{Wrist, 320, 240},
		{ThumbTip, 639, 0},
		{IndexTip, 160, 360},
	}

	for _, tt := range tests {
		got := set.At(tt.id)
		if got.ID != tt.id || got.X != tt.wantX || got.Y != tt.wantY {
			t.Errorf("At(%d) = %+v, want {ID:%d X:%d Y:%d}", tt.id, got, tt.id, tt.wantX, tt.wantY)
		}
	}

	for i, lm := range set.Landmarks() {
		if lm.ID != i {
			t.Errorf("landmark %d has id %d", i, lm.ID)
		}
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks(), FistLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() after Close")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPresets(t *testing.T) {
	t.Run("open palm tips are above their middle joints", func(t *testing.T) {
		lm := OpenPalmLandmarks()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if lm.Points[tip].Y >= lm.Points[tip-2].Y {
				t.Errorf("tip %d should be above landmark %d", tip, tip-2)
			}
		}
		if lm.Points[ThumbTip].X <= lm.Points[ThumbIP].X {
			t.Error("thumb tip should be right of thumb IP")
		}
	})

	t.Run("fist tips are below their middle joints", func(t *testing.T) {
		lm := FistLandmarks()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if lm.Points[tip].Y < lm.Points[tip-2].Y {
				t.Errorf("tip %d should not be above landmark %d", tip, tip-2)
			}
		}
		if lm.Points[ThumbTip].X > lm.Points[ThumbIP].X {
			t.Error("thumb tip should be tucked left of thumb IP")
		}
	})

	t.Run("victory raises index and middle only", func(t *testing.T) {
		lm := VictoryLandmarks()
		if lm.Points[IndexTip].Y >= lm.Points[IndexPIP].Y {
			t.Error("index should be raised")
		}
		if lm.Points[MiddleTip].Y >= lm.Points[MiddlePIP].Y {
			t.Error("middle should be raised")
		}
		if lm.Points[RingTip].Y < lm.Points[RingPIP].Y {
			t.Error("ring should be folded")
		}
	})
}

func TestParseResponse(t *testing.T) {
	fullHand := `{"points":[` +
		`{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},` +
		`{"x":0.9,"y":0.1,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},` +
		`{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},` +
		`{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},` +
		`{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},{"x":0.1,"y":0.2,"z":0},` +
		`{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.8}`

	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   error
		anyErr    bool
	}{
		{name: "no hands", line: `{"hands":[]}`, wantHands: 0},
		{name: "one hand", line: `{"hands":[` + fullHand + `]}`, wantHands: 1},
		{name: "two hands", line: `{"hands":[` + fullHand + `,` + fullHand + `]}`, wantHands: 2},
		{name: "short hand", line: `{"hands":[{"points":[{"x":0,"y":0,"z":0}]}]}`, wantErr: ErrIncompleteHand},
		{name: "service error", line: `{"hands":[],"error":"model not loaded"}`, anyErr: true},
		{name: "garbage", line: `not json`, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseResponse([]byte(tt.line))

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			case tt.anyErr:
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}

			if len(hands) != tt.wantHands {
				t.Fatalf("got %d hands, want %d", len(hands), tt.wantHands)
			}
			if tt.wantHands > 0 {
				if hands[0].Handedness != "Left" || hands[0].Points[ThumbTip].X != 0.9 {
					t.Errorf("hand decoded wrong: %+v", hands[0])
				}
			}
		})
	}
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("missing script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ScriptPath = filepath.Join(t.TempDir(), "nope.py")

		_, err := NewMediaPipeDetector(cfg)
		if !errors.Is(err, ErrScriptNotFound) {
			t.Errorf("expected ErrScriptNotFound, got %v", err)
		}
	})

	t.Run("explicit paths and args", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), "mediapipe_service.py")
		if err := os.WriteFile(script, []byte("# stub\n"), 0644); err != nil {
			t.Fatalf("write script: %v", err)
		}

		cfg := DefaultConfig()
		cfg.ScriptPath = script
		cfg.PythonPath = "/opt/py/bin/python"
		cfg.MaxHands = 1
		cfg.MinConfidence = 0.75

		d, err := NewMediaPipeDetector(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer d.Close()

		if d.pythonPath != "/opt/py/bin/python" {
			t.Errorf("pythonPath = %q", d.pythonPath)
		}

		want := []string{script, "--max-hands", "1", "--min-detection-confidence", "0.75", "--min-tracking-confidence", "0.5"}
		got := d.serviceArgs()
		if len(got) != len(want) {
			t.Fatalf("serviceArgs() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("Close before start is a no-op", func(t *testing.T) {
		d := &MediaPipeDetector{}
		if err := d.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})
}

func TestRender(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := OpenPalmLandmarks()
	Render(&frame, &hand)

	tip := hand.Pixels(640, 480).At(IndexTip)
	px := frame.GetVecbAt(tip.Y, tip.X)
	// landmark dots are red; gocv stores BGR
	if px[2] != 255 || px[0] != 0 {
		t.Errorf("pixel at index tip = %v, want red", px)
	}

	corner := frame.GetVecbAt(0, 0)
	if corner[0] != 0 || corner[1] != 0 || corner[2] != 0 {
		t.Errorf("pixel far from the hand changed: %v", corner)
	}
}

func TestRender_IgnoresEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	hand := OpenPalmLandmarks()
	Render(&empty, &hand)
	Render(nil, &hand)

	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()
	Render(&frame, nil)
}
