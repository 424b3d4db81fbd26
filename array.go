package ucdp

import "fmt"

// An ArrayType repeats an element type a fixed number of times.
type ArrayType struct {
	elem   Type
	length int
}

// NewArrayType returns the array of length elements of elem.
func NewArrayType(elem Type, length int) *ArrayType {
	if length <= 0 {
		panic(typeErrf("ArrayType: invalid length %d", length))
	}
	t := &ArrayType{elem: elem, length: length}
	return canon.internType(t).(*ArrayType)
}

// Elem returns the element type.
func (t *ArrayType) Elem() Type { return t.elem }

// Len returns the number of elements.
func (t *ArrayType) Len() int { return t.length }

// Width returns the summed width of all elements.
func (t *ArrayType) Width() int { return t.length * t.elem.Width() }

// Default returns 0; array values have no scalar default.
func (t *ArrayType) Default() int64 { return 0 }

func (t *ArrayType) String() string {
	return fmt.Sprintf("ArrayType(%s, %d)", t.elem, t.length)
}

func (t *ArrayType) internKey() string {
	ek := t.elem.internKey()
	if ek == "" {
		return ""
	}
	return fmt.Sprintf("array:%d:%s", t.length, ek)
}
