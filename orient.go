package ucdp

// Orient is the orientation of a structure member or the direction of a port.
// Both live on the same three-valued algebra: traversing a backward member
// flips forward/backward (and IN/OUT), bidirectional absorbs everything.
type Orient int8

// Member orientations.
const (
	BWD   Orient = -1
	BIDIR Orient = 0
	FWD   Orient = 1
)

// Port directions, mapped onto the same algebra so that orientation flips
// apply uniformly: an OUT port seen through a backward member is an IN port.
const (
	IN    = BWD
	INOUT = BIDIR
	OUT   = FWD
)

// Mul returns o flipped by p.
func (o Orient) Mul(p Orient) Orient {
	return o * p
}

// String renders the member orientation.
func (o Orient) String() string {
	switch o {
	case BWD:
		return "BWD"
	case BIDIR:
		return "BIDIR"
	}
	return "FWD"
}

// DirString renders the port direction.
func (o Orient) DirString() string {
	switch o {
	case IN:
		return "IN"
	case INOUT:
		return "INOUT"
	}
	return "OUT"
}

// DirectionFromName derives a port direction from a name suffix ("_i", "_o",
// "_io"). The second return value is false for plain (signal) names.
func DirectionFromName(name string) (Orient, bool) {
	switch _, suffix := SplitSuffix(name); suffix {
	case "_i":
		return IN, true
	case "_o":
		return OUT, true
	case "_io":
		return INOUT, true
	}
	return FWD, false
}

func dirSuffix(dir Orient) string {
	switch dir {
	case IN:
		return "_i"
	case INOUT:
		return "_io"
	}
	return "_o"
}
