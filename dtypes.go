// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"
)

// A Type describes the shape of a hardware value: scalar bit vectors,
// enumerations, structures and arrays. All non-dynamic types are canonical:
// structurally identical constructions yield the identical object, so
// identity comparison implies structural equality. Types are immutable once
// built (dynamic struct types excepted, which stay open and are never
// canonicalized).
type Type interface {
	// Width returns the total width in bits.
	Width() int
	// Default returns the elaboration-time default value.
	Default() int64
	String() string
	// internKey returns the canonicalization key, or "" for dynamic types.
	internKey() string
}

type scalarKind uint8

const (
	kindUint scalarKind = iota
	kindSint
	kindInteger
	kindBit
	kindBool
	kindClk
	kindRstAn
)

var scalarNames = map[scalarKind]string{
	kindUint:    "UintType",
	kindSint:    "SintType",
	kindInteger: "IntegerType",
	kindBit:     "BitType",
	kindBool:    "BoolType",
	kindClk:     "ClkType",
	kindRstAn:   "RstAnType",
}

// A ScalarType is a plain bit vector with width, signedness and default.
type ScalarType struct {
	kind   scalarKind
	width  int
	dflt   int64
	signed bool
}

// TypeOpt configures type construction.
type TypeOpt func(*typeCfg)

type typeCfg struct {
	dflt    int64
	hasDflt bool
	doc     Doc
	dynamic bool
}

// Default sets the type default value.
func Default(v int64) TypeOpt {
	return func(c *typeCfg) {
		c.dflt = v
		c.hasDflt = true
	}
}

// WithTypeDoc attaches documentation to a composite type.
func WithTypeDoc(doc Doc) TypeOpt {
	return func(c *typeCfg) { c.doc = doc }
}

// Dynamic marks a composite type as per-call-site parameterized: it is never
// canonicalized, two constructions are always distinct.
func Dynamic() TypeOpt {
	return func(c *typeCfg) { c.dynamic = true }
}

func applyTypeOpts(opts []TypeOpt) typeCfg {
	var c typeCfg
	for _, o := range opts {
		o(&c)
	}
	return c
}

func newScalar(kind scalarKind, width int, signed bool, opts []TypeOpt) *ScalarType {
	c := applyTypeOpts(opts)
	if width <= 0 {
		panic(typeErrf("%s: invalid width %d", scalarNames[kind], width))
	}
	t := &ScalarType{kind: kind, width: width, dflt: c.dflt, signed: signed}
	if !t.fits(c.dflt) {
		panic(typeErrf("%s: default %d does not fit width %d", scalarNames[kind], c.dflt, width))
	}
	return canon.internType(t).(*ScalarType)
}

// UintType returns the unsigned bit vector type of the given width.
func UintType(width int, opts ...TypeOpt) *ScalarType {
	return newScalar(kindUint, width, false, opts)
}

// SintType returns the signed bit vector type of the given width.
func SintType(width int, opts ...TypeOpt) *ScalarType {
	return newScalar(kindSint, width, true, opts)
}

// IntegerType returns the 32-bit signed integer type.
func IntegerType(opts ...TypeOpt) *ScalarType {
	return newScalar(kindInteger, 32, true, opts)
}

// BitType returns the single bit type.
func BitType(opts ...TypeOpt) *ScalarType {
	return newScalar(kindBit, 1, false, opts)
}

// BoolType returns the boolean type, the result type of comparisons.
func BoolType(opts ...TypeOpt) *ScalarType {
	return newScalar(kindBool, 1, false, opts)
}

// ClkType returns the clock type.
func ClkType() *ScalarType {
	return newScalar(kindClk, 1, false, nil)
}

// RstAnType returns the asynchronous low-active reset type.
func RstAnType() *ScalarType {
	return newScalar(kindRstAn, 1, false, nil)
}

// Width returns the width in bits.
func (t *ScalarType) Width() int { return t.width }

// Default returns the default value.
func (t *ScalarType) Default() int64 { return t.dflt }

// Signed reports whether values are interpreted as two's complement.
func (t *ScalarType) Signed() bool { return t.signed }

// New returns the same scalar type with another default.
func (t *ScalarType) New(opts ...TypeOpt) *ScalarType {
	return newScalar(t.kind, t.width, t.signed, opts)
}

// fits reports whether v is representable.
func (t *ScalarType) fits(v int64) bool {
	if t.width >= 64 {
		return true
	}
	if t.signed {
		lim := int64(1) << uint(t.width-1)
		return v >= -lim && v < lim
	}
	return v >= 0 && v < int64(1)<<uint(t.width)
}

// Contains reports whether v is representable by t.
func (t *ScalarType) Contains(v int64) bool { return t.fits(v) }

// Encode validates v against t and returns the constant expression holding it.
func (t *ScalarType) Encode(v int64) (Expr, error) {
	if !t.fits(v) {
		return nil, typeErrf("value %d does not fit %s", v, t)
	}
	return ConstVal(t.New(Default(v))), nil
}

func (t *ScalarType) String() string {
	var args []string
	switch t.kind {
	case kindUint, kindSint:
		args = append(args, fmt.Sprintf("%d", t.width))
	}
	if t.dflt != 0 {
		args = append(args, fmt.Sprintf("default=%d", t.dflt))
	}
	return scalarNames[t.kind] + "(" + strings.Join(args, ", ") + ")"
}

func (t *ScalarType) internKey() string {
	return fmt.Sprintf("scalar:%d:%d:%d", t.kind, t.width, t.dflt)
}

// IsClkType reports whether t is the clock type.
func IsClkType(t Type) bool {
	s, ok := t.(*ScalarType)
	return ok && s.kind == kindClk
}

// IsRstAnType reports whether t is the async reset type.
func IsRstAnType(t Type) bool {
	s, ok := t.(*ScalarType)
	return ok && s.kind == kindRstAn
}

// IsBoolType reports whether t is a single-bit boolean-compatible type.
func IsBoolType(t Type) bool {
	s, ok := t.(*ScalarType)
	return ok && s.width == 1
}

// widthCompatible reports whether a value of type src may drive dst: the
// widths match, or src is a plain integer which adapts to any width.
func widthCompatible(dst, src Type) bool {
	if s, ok := src.(*ScalarType); ok && s.kind == kindInteger {
		return true
	}
	return dst.Width() == src.Width()
}

// Castable reports whether an expression of type from may be explicitly cast
// to type to: both must be scalar and of equal width. There is no implicit
// coercion across unrelated kinds.
func Castable(to, from Type) bool {
	ts, ok := to.(*ScalarType)
	if !ok {
		return false
	}
	fs, ok := from.(*ScalarType)
	return ok && ts.width == fs.width
}
