package ucdp

import (
	"fmt"
	"strconv"
	"strings"
)

// A Slice is an inclusive bit or index range. Bit slices are written highest
// index first ("3:1"), array dimension slices lowest first ("0:4"). A single
// index renders without a colon.
type Slice struct {
	Left  int
	Right int
}

// SliceOf returns the left:right slice.
func SliceOf(left, right int) Slice {
	return Slice{Left: left, Right: right}
}

// Idx returns the single-index slice.
func Idx(i int) Slice {
	return Slice{Left: i, Right: i}
}

// ParseSlice parses "3:1", "0:4" or "2".
func ParseSlice(s string) (Slice, error) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		left, err := strconv.Atoi(s[:i])
		if err != nil {
			return Slice{}, typeErrf("invalid slice %q", s)
		}
		right, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Slice{}, typeErrf("invalid slice %q", s)
		}
		return Slice{Left: left, Right: right}, nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return Slice{}, typeErrf("invalid slice %q", s)
	}
	return Idx(idx), nil
}

// Width returns the number of indices covered.
func (s Slice) Width() int {
	d := s.Left - s.Right
	if d < 0 {
		d = -d
	}
	return d + 1
}

// Low returns the lowest covered index.
func (s Slice) Low() int {
	if s.Left < s.Right {
		return s.Left
	}
	return s.Right
}

// High returns the highest covered index.
func (s Slice) High() int {
	if s.Left > s.Right {
		return s.Left
	}
	return s.Right
}

// Overlaps reports whether both slices cover a common index.
func (s Slice) Overlaps(o Slice) bool {
	return s.Low() <= o.High() && o.Low() <= s.High()
}

func (s Slice) String() string {
	if s.Left == s.Right {
		return strconv.Itoa(s.Left)
	}
	return fmt.Sprintf("%d:%d", s.Left, s.Right)
}

// A Doc bundles the optional documentation of a type, identifier or module.
type Doc struct {
	Title   string
	Descr   string
	Comment string
}

// IsEmpty reports whether no documentation is set.
func (d Doc) IsEmpty() bool {
	return d == Doc{}
}
