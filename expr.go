// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"
)

// An Expr is a hardware expression: a constant, an identifier reference or an
// operator tree over them. Expressions carry a Type and evaluate to an
// integer at elaboration time when all their operands are constant.
type Expr interface {
	// ExprType returns the expression result type.
	ExprType() Type
	// Int evaluates the expression at elaboration time.
	Int() (int64, error)
	String() string
}

// truncate reduces v to the two's complement value range of t. Results wrap
// silently, matching hardware semantics.
func truncate(v int64, t Type) int64 {
	s, ok := t.(*ScalarType)
	if !ok || s.width >= 64 {
		return v
	}
	w := uint(s.width)
	v &= int64(1)<<w - 1
	if s.signed && v&(int64(1)<<(w-1)) != 0 {
		v -= int64(1) << w
	}
	return v
}

// A ConstExpr is a literal constant; its value is the default of its type.
type ConstExpr struct {
	typ *ScalarType
}

// ConstVal returns the constant expression holding the default of t.
func ConstVal(t *ScalarType) *ConstExpr { return &ConstExpr{typ: t} }

// ConstInt returns the bare integer constant v.
func ConstInt(v int64) *ConstExpr {
	return &ConstExpr{typ: IntegerType(Default(v))}
}

func (e *ConstExpr) ExprType() Type { return e.typ }

func (e *ConstExpr) Int() (int64, error) { return e.typ.Default(), nil }

func (e *ConstExpr) String() string {
	v := e.typ.Default()
	switch e.typ.kind {
	case kindUint:
		return fmt.Sprintf("%d'd%d", e.typ.width, v)
	case kindSint:
		return fmt.Sprintf("%d'sd%d", e.typ.width, v)
	case kindBit, kindBool:
		return fmt.Sprintf("1'b%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// An Op is a binary arithmetic or bitwise operation. The result type is the
// type of the left operand and the result value wraps to its width.
type Op struct {
	Left  Expr
	Sign  string
	Right Expr
}

// NewOp returns the binary operation left sign right.
func NewOp(left Expr, sign string, right Expr) *Op {
	switch sign {
	case "+", "-", "*", "//", "%", "**", "<<", ">>", "&", "|", "^":
	default:
		panic(typeErrf("unknown operator %q", sign))
	}
	return &Op{Left: left, Sign: sign, Right: right}
}

func (e *Op) ExprType() Type { return e.Left.ExprType() }

func (e *Op) Int() (int64, error) {
	l, err := e.Left.Int()
	if err != nil {
		return 0, err
	}
	r, err := e.Right.Int()
	if err != nil {
		return 0, err
	}
	var v int64
	switch e.Sign {
	case "+":
		v = l + r
	case "-":
		v = l - r
	case "*":
		v = l * r
	case "//":
		if r == 0 {
			return 0, typeErrf("division by zero in %s", e)
		}
		v = floorDiv(l, r)
	case "%":
		if r == 0 {
			return 0, typeErrf("division by zero in %s", e)
		}
		v = floorMod(l, r)
	case "**":
		v = ipow(l, r)
	case "<<":
		v = l << uint(r)
	case ">>":
		v = l >> uint(r)
	case "&":
		v = l & r
	case "|":
		v = l | r
	case "^":
		v = l ^ r
	}
	return truncate(v, e.ExprType()), nil
}

func (e *Op) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Sign, e.Right)
}

// floorDiv rounds the quotient towards negative infinity.
func floorDiv(l, r int64) int64 {
	q := l / r
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}
	return q
}

// floorMod has the sign of the divisor.
func floorMod(l, r int64) int64 {
	m := l % r
	if m != 0 && ((m < 0) != (r < 0)) {
		m += r
	}
	return m
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	v := int64(1)
	for ; exp > 0; exp-- {
		v *= base
	}
	return v
}

// A SOp is a unary sign operation: "-", "~" or "abs". The result keeps the
// operand type but does not wrap, negation is exact.
type SOp struct {
	Sign    string
	Operand Expr
}

// NewSOp returns the unary operation sign operand.
func NewSOp(sign string, operand Expr) *SOp {
	switch sign {
	case "-", "~", "abs":
	default:
		panic(typeErrf("unknown unary operator %q", sign))
	}
	return &SOp{Sign: sign, Operand: operand}
}

func (e *SOp) ExprType() Type { return e.Operand.ExprType() }

func (e *SOp) Int() (int64, error) {
	v, err := e.Operand.Int()
	if err != nil {
		return 0, err
	}
	switch e.Sign {
	case "-":
		return -v, nil
	case "~":
		return ^v, nil
	case "abs":
		if v < 0 {
			return -v, nil
		}
		return v, nil
	}
	return 0, typeErrf("unknown unary operator %q", e.Sign)
}

func (e *SOp) String() string {
	if e.Sign == "abs" {
		return fmt.Sprintf("abs(%s)", e.Operand)
	}
	return fmt.Sprintf("%s%s", e.Sign, e.Operand)
}

// A BoolOp is a comparison; its result type is BoolType.
type BoolOp struct {
	Left  Expr
	Sign  string
	Right Expr
}

// NewBoolOp returns the comparison left sign right.
func NewBoolOp(left Expr, sign string, right Expr) *BoolOp {
	switch sign {
	case "==", "!=", "<", "<=", ">", ">=":
	default:
		panic(typeErrf("unknown comparison %q", sign))
	}
	return &BoolOp{Left: left, Sign: sign, Right: right}
}

func (e *BoolOp) ExprType() Type { return BoolType() }

func (e *BoolOp) Int() (int64, error) {
	l, err := e.Left.Int()
	if err != nil {
		return 0, err
	}
	r, err := e.Right.Int()
	if err != nil {
		return 0, err
	}
	var ok bool
	switch e.Sign {
	case "==":
		ok = l == r
	case "!=":
		ok = l != r
	case "<":
		ok = l < r
	case "<=":
		ok = l <= r
	case ">":
		ok = l > r
	case ">=":
		ok = l >= r
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

func (e *BoolOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Sign, e.Right)
}

// A SliceOp extracts a bit range. Its type is the unsigned type of the slice
// width, defaulted to the extracted bits of the operand default.
type SliceOp struct {
	Operand Expr
	Slice   Slice
}

// NewSliceOp returns operand[slice].
func NewSliceOp(operand Expr, sl Slice) *SliceOp {
	if w := operand.ExprType().Width(); sl.High() >= w {
		panic(typeErrf("slice [%s] out of range for %s of width %d", sl, operand, w))
	}
	return &SliceOp{Operand: operand, Slice: sl}
}

func (e *SliceOp) extract(v int64) int64 {
	return (v >> uint(e.Slice.Low())) & (int64(1)<<uint(e.Slice.Width()) - 1)
}

func (e *SliceOp) ExprType() Type {
	return UintType(e.Slice.Width(), Default(e.extract(e.Operand.ExprType().Default())))
}

func (e *SliceOp) Int() (int64, error) {
	v, err := e.Operand.Int()
	if err != nil {
		return 0, err
	}
	return e.extract(v), nil
}

func (e *SliceOp) String() string {
	return fmt.Sprintf("%s[%s]", e.Operand, e.Slice)
}

// A ConcatExpr joins expressions into one vector; the first part is the
// least significant.
type ConcatExpr struct {
	Parts []Expr
}

// NewConcatExpr returns the concatenation of parts, LSB first.
func NewConcatExpr(parts ...Expr) *ConcatExpr {
	if len(parts) == 0 {
		panic(typeErrf("empty concatenation"))
	}
	return &ConcatExpr{Parts: parts}
}

func (e *ConcatExpr) ExprType() Type {
	w := 0
	for _, p := range e.Parts {
		w += p.ExprType().Width()
	}
	return UintType(w)
}

func (e *ConcatExpr) Int() (int64, error) {
	var v int64
	shift := uint(0)
	for _, p := range e.Parts {
		pv, err := p.Int()
		if err != nil {
			return 0, err
		}
		w := uint(p.ExprType().Width())
		pv &= int64(1)<<w - 1
		v |= pv << shift
		shift += w
	}
	return v, nil
}

func (e *ConcatExpr) String() string {
	parts := make([]string, len(e.Parts))
	for i, p := range e.Parts {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// A CastExpr reinterprets its operand as another scalar type of the same
// width. The bit pattern is preserved.
type CastExpr struct {
	To      *ScalarType
	Operand Expr
}

// Cast reinterprets e as type to. Both type and operand must be scalar and
// of equal width.
func Cast(to *ScalarType, e Expr) (Expr, error) {
	if !Castable(to, e.ExprType()) {
		return nil, typeErrf("cannot cast %s (%s) to %s", e, e.ExprType(), to)
	}
	return &CastExpr{To: to, Operand: e}, nil
}

func (e *CastExpr) ExprType() Type { return e.To }

func (e *CastExpr) Int() (int64, error) {
	v, err := e.Operand.Int()
	if err != nil {
		return 0, err
	}
	return truncate(v, e.To), nil
}

func (e *CastExpr) String() string {
	return fmt.Sprintf("cast(%s, %s)", e.To, e.Operand)
}

// A TernaryExpr selects between two expressions; its type is the type of the
// first alternative.
type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// NewTernaryExpr returns cond ? then : els.
func NewTernaryExpr(cond, then, els Expr) *TernaryExpr {
	return &TernaryExpr{Cond: cond, Then: then, Else: els}
}

func (e *TernaryExpr) ExprType() Type { return e.Then.ExprType() }

func (e *TernaryExpr) Int() (int64, error) {
	c, err := e.Cond.Int()
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return e.Then.Int()
	}
	return e.Else.Int()
}

func (e *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Cond, e.Then, e.Else)
}

// A MinExpr evaluates to the smallest of its arguments.
type MinExpr struct {
	Args []Expr
}

// NewMinExpr returns min(args...).
func NewMinExpr(args ...Expr) *MinExpr {
	if len(args) == 0 {
		panic(typeErrf("min of nothing"))
	}
	return &MinExpr{Args: args}
}

func (e *MinExpr) ExprType() Type { return e.Args[0].ExprType() }

func (e *MinExpr) Int() (int64, error) {
	best, err := e.Args[0].Int()
	if err != nil {
		return 0, err
	}
	for _, a := range e.Args[1:] {
		v, err := a.Int()
		if err != nil {
			return 0, err
		}
		if v < best {
			best = v
		}
	}
	return best, nil
}

func (e *MinExpr) String() string { return funcString("min", e.Args) }

// A MaxExpr evaluates to the largest of its arguments.
type MaxExpr struct {
	Args []Expr
}

// NewMaxExpr returns max(args...).
func NewMaxExpr(args ...Expr) *MaxExpr {
	if len(args) == 0 {
		panic(typeErrf("max of nothing"))
	}
	return &MaxExpr{Args: args}
}

func (e *MaxExpr) ExprType() Type { return e.Args[0].ExprType() }

func (e *MaxExpr) Int() (int64, error) {
	best, err := e.Args[0].Int()
	if err != nil {
		return 0, err
	}
	for _, a := range e.Args[1:] {
		v, err := a.Int()
		if err != nil {
			return 0, err
		}
		if v > best {
			best = v
		}
	}
	return best, nil
}

func (e *MaxExpr) String() string { return funcString("max", e.Args) }

// A Log2Expr evaluates to the floored base-2 logarithm of its argument.
type Log2Expr struct {
	Arg Expr
}

// NewLog2Expr returns log2(arg).
func NewLog2Expr(arg Expr) *Log2Expr { return &Log2Expr{Arg: arg} }

func (e *Log2Expr) ExprType() Type { return e.Arg.ExprType() }

func (e *Log2Expr) Int() (int64, error) {
	v, err := e.Arg.Int()
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, typeErrf("log2 of non-positive value %d", v)
	}
	n := int64(-1)
	for ; v > 0; v >>= 1 {
		n++
	}
	return n, nil
}

func (e *Log2Expr) String() string { return fmt.Sprintf("log2(%s)", e.Arg) }

func funcString(name string, args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
