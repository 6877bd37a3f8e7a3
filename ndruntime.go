package ndruntime

import (
	"fmt"
	"strings"
)

// ExtendMode selects how spatial operations sample outside array bounds.
type ExtendMode int

const (
	// ExtendNearest repeats the closest edge value: (a a a a | a b c d | d d d d)
	ExtendNearest ExtendMode = iota
	// ExtendWrap tiles the array periodically: (a b c d | a b c d | a b c d)
	ExtendWrap
	// ExtendReflect mirrors about the edge: (d c b a | a b c d | d c b a)
	ExtendReflect
	// ExtendMirror mirrors about the center of the edge cell: (d c b | a b c d | c b a)
	ExtendMirror
	// ExtendConstant fills with a caller-supplied constant: (k k k k | a b c d | k k k k)
	ExtendConstant
)

var extendModeNames = map[ExtendMode]string{
	ExtendNearest:  "nearest",
	ExtendWrap:     "wrap",
	ExtendReflect:  "reflect",
	ExtendMirror:   "mirror",
	ExtendConstant: "constant",
}

func (m ExtendMode) String() string {
	if s, ok := extendModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ExtendMode(%d)", int(m))
}

// Valid reports whether m is a member of the closed mode set.
func (m ExtendMode) Valid() bool {
	_, ok := extendModeNames[m]
	return ok
}

// ParseExtendMode converts a mode name into its ExtendMode value.
func ParseExtendMode(s string) (ExtendMode, error) {
	for m, name := range extendModeNames {
		if name == strings.ToLower(s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown extend mode %q", s)
}

// Normalized callback contracts. The callback package resolves
// user-supplied callables of various shapes into these; the engine only
// ever sees these forms. Invocations are strictly ordered and issued on
// the calling goroutine; the first non-nil error stops the kernel.

// LineFunc is a window callback over one boundary-extended input line.
// It must fill out completely; in must not be retained after return.
type LineFunc func(in, out []float64) error

// WindowFunc is a scalar-reducing window callback: it receives one
// footprint window and returns the output element.
type WindowFunc func(window []float64) (float64, error)

// MapFunc is a coordinate-mapping callback for geometric transforms.
// It receives an output-space coordinate and fills in with the
// input-space coordinate to sample; len(in) is the input rank.
type MapFunc func(out []int, in []float64) error
