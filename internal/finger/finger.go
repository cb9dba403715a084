// Package finger classifies each digit of a detected hand as extended or
// curled and counts the extended ones.
//
// The rules are fixed geometric comparisons on pixel landmarks:
//
//   - Thumb: extended when the tip lies to the right of the joint just
//     below it (x[4] > x[3]). This is a horizontal test and is mirror
//     sensitive: it assumes a right hand with the palm facing the camera.
//     A left hand, or a mirrored frame, inverts the thumb result.
//   - Index, middle, ring, pinky: extended when the tip is higher on screen
//     than the joint two below it (y[tip] < y[tip-2]). Pixel y grows
//     downward, so smaller means higher.
//
// There is no smoothing across frames; Classify is a pure function of one
// LandmarkSet.
package finger

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Digit identifies a finger in canonical order.
type Digit int

const (
	Thumb Digit = iota
	Index
	Middle
	Ring
	Pinky

	// NumDigits is the length of a State.
	NumDigits = 5
)

// MaxCount is the largest value State.Count can return.
const MaxCount = NumDigits

var digitNames = [NumDigits]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lowercase digit name.
func (d Digit) String() string {
	if d < 0 || int(d) >= NumDigits {
		return fmt.Sprintf("Digit(%d)", int(d))
	}
	return digitNames[d]
}

// TipIDs maps each digit to its fingertip landmark id.
var TipIDs = [NumDigits]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// State records which digits are extended, indexed by Digit.
type State [NumDigits]bool

// Extended reports whether digit d is extended.
func (s State) Extended(d Digit) bool {
	return s[d]
}

// Count returns the number of extended digits, in [0, MaxCount].
func (s State) Count() int {
	n := 0
	for _, up := range s {
		if up {
			n++
		}
	}
	return n
}

// Bits returns the state as 0/1 values.
func (s State) Bits() [NumDigits]int {
	var b [NumDigits]int
	for i, up := range s {
		if up {
			b[i] = 1
		}
	}
	return b
}

// String renders the state as "[1 0 1 1 0]".
func (s State) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, b := range s.Bits() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", b)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Classify computes the finger state of one hand. The set must not be nil.
func Classify(set *detector.LandmarkSet) State {
	if set == nil {
		panic("finger: Classify called with nil landmark set")
	}

	var s State

	tip := TipIDs[Thumb]
	s[Thumb] = set.At(tip).X > set.At(tip-1).X

	for d := Index; d <= Pinky; d++ {
		tip := TipIDs[d]
		s[d] = set.At(tip).Y < set.At(tip-2).Y
	}

	return s
}
