// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nbiotcloud/ucdp/internal/lex"
)

// Expression text parsing. Accepted literal forms:
//
//	123         bare integer
//	16'd10      sized, base b/o/d/h, optional s for signed (16'sd10)
//	3b001       sized without tick
//	'3d2'       quoted sized
//
// Names are resolved through a caller supplied resolver, usually a module
// namespace.

const (
	itemConst lex.Type = iota // *ConstExpr
	itemName                  // string
	itemOp                    // string
	itemErr                   // string
)

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == rune(lex.EOF):
		l.Emit(lex.EOF, nil)
		return nil
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
		return nil
	case r >= '0' && r <= '9':
		return lexNumber
	case r == '_' || unicode.IsLetter(r):
		return lexName
	}
	return lexOp
}

func lexNumber(l *lex.Lexer) lex.StateFn {
	var digits strings.Builder
	digits.WriteRune(l.Current())
	l.AcceptWhile(func(r rune) bool {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			return true
		}
		return false
	})
	r := l.Next()
	tick := r == '\''
	if tick {
		r = l.Next()
	}
	signed := false
	if r == 's' || r == 'S' {
		signed = true
		r = l.Next()
	}
	base := 0
	switch r {
	case 'b', 'B':
		base = 2
	case 'o', 'O':
		base = 8
	case 'd', 'D':
		base = 10
	case 'h', 'H', 'x', 'X':
		base = 16
	}
	if base == 0 {
		if tick || signed {
			l.Emit(itemErr, "malformed number")
			return nil
		}
		l.Backup()
		v, err := strconv.ParseInt(digits.String(), 10, 64)
		if err != nil {
			l.Emit(itemErr, "malformed number")
			return nil
		}
		l.Emit(itemConst, ConstInt(v))
		return nil
	}
	width, err := strconv.Atoi(digits.String())
	if err != nil || width <= 0 {
		l.Emit(itemErr, "malformed width")
		return nil
	}
	var val strings.Builder
	neg := false
	if n := l.Next(); n == '-' {
		neg = true
	} else {
		l.Backup()
	}
	l.AcceptWhile(func(r rune) bool {
		if isBaseDigit(r, base) {
			val.WriteRune(r)
			return true
		}
		return false
	})
	v, err := strconv.ParseInt(val.String(), base, 64)
	if err != nil {
		l.Emit(itemErr, "malformed number")
		return nil
	}
	if neg {
		v = -v
	}
	var t *ScalarType
	func() {
		defer func() {
			if recover() != nil {
				t = nil
			}
		}()
		if signed {
			t = SintType(width, Default(v))
		} else {
			t = UintType(width, Default(v))
		}
	}()
	if t == nil {
		l.Emit(itemErr, "value does not fit width "+strconv.Itoa(width))
		return nil
	}
	l.Emit(itemConst, ConstVal(t))
	return nil
}

func isBaseDigit(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < base
	case r >= 'a' && r <= 'f':
		return base == 16
	case r >= 'A' && r <= 'F':
		return base == 16
	}
	return false
}

func lexName(l *lex.Lexer) lex.StateFn {
	var sb strings.Builder
	sb.WriteRune(l.Current())
	l.AcceptWhile(func(r rune) bool {
		if r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			return true
		}
		return false
	})
	l.Emit(itemName, sb.String())
	return nil
}

func lexOp(l *lex.Lexer) lex.StateFn {
	r := l.Current()
	two := func(next rune, short, long string) {
		if l.Next() == next {
			l.Emit(itemOp, long)
			return
		}
		l.Backup()
		if short == "" {
			l.Emit(itemErr, "unexpected character "+strconv.QuoteRune(r))
			return
		}
		l.Emit(itemOp, short)
	}
	switch r {
	case '*':
		two('*', "*", "**")
	case '/':
		two('/', "", "//")
	case '<':
		if n := l.Next(); n == '<' {
			l.Emit(itemOp, "<<")
		} else if n == '=' {
			l.Emit(itemOp, "<=")
		} else {
			l.Backup()
			l.Emit(itemOp, "<")
		}
	case '>':
		if n := l.Next(); n == '>' {
			l.Emit(itemOp, ">>")
		} else if n == '=' {
			l.Emit(itemOp, ">=")
		} else {
			l.Backup()
			l.Emit(itemOp, ">")
		}
	case '=':
		two('=', "", "==")
	case '!':
		two('=', "", "!=")
	case '+', '-', '%', '&', '|', '^', '~', '(', ')', '[', ']', '{', '}', ',', '?', ':':
		l.Emit(itemOp, string(r))
	default:
		l.Emit(itemErr, "unexpected character "+strconv.QuoteRune(r))
	}
	return nil
}

// A Resolver maps a name occurring in expression text to an expression.
type Resolver func(name string) (Expr, error)

type exparser struct {
	l     lex.Interface
	input string
	item  lex.Item
	ahead bool
	res   Resolver
}

// Parse parses expression text, resolving names through res. A nil resolver
// rejects all names.
func Parse(input string, res Resolver) (Expr, error) {
	src := input
	if len(src) >= 2 && strings.HasPrefix(src, "'") && strings.HasSuffix(src, "'") {
		src = src[1 : len(src)-1]
	}
	if res == nil {
		res = func(name string) (Expr, error) {
			return nil, &ParseError{Input: input, Msg: "unknown name " + strconv.Quote(name)}
		}
	}
	p := &exparser{
		l:     lex.New(strings.NewReader(src), lexInit),
		input: input,
		res:   res,
	}
	e, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if i := p.next(); i.Type != lex.EOF {
		return nil, p.errf(i, "unexpected %v", i.Value)
	}
	return e, nil
}

// ParseConst parses constant expression text; names are not allowed.
func ParseConst(input string) (Expr, error) {
	return Parse(input, nil)
}

func (p *exparser) next() lex.Item {
	if p.ahead {
		p.ahead = false
		return p.item
	}
	p.item = p.l.Lex()
	return p.item
}

func (p *exparser) backup() { p.ahead = true }

// acceptOp consumes the next item if it is one of the given operators.
func (p *exparser) acceptOp(ops ...string) (string, bool) {
	i := p.next()
	if i.Type == itemOp {
		s := i.Value.(string)
		for _, op := range ops {
			if s == op {
				return s, true
			}
		}
	}
	p.backup()
	return "", false
}

func (p *exparser) expectOp(op string) error {
	if _, ok := p.acceptOp(op); !ok {
		i := p.next()
		p.backup()
		return p.errf(i, "expected %q", op)
	}
	return nil
}

func (p *exparser) errf(i lex.Item, format string, args ...interface{}) error {
	return &ParseError{Input: p.input, Pos: int(i.Pos), Msg: fmt.Sprintf(format, args...)}
}

func (p *exparser) ternary() (Expr, error) {
	cond, err := p.compare()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("?"); !ok {
		return cond, nil
	}
	then, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return NewTernaryExpr(cond, then, els), nil
}

func (p *exparser) compare() (Expr, error) {
	left, err := p.bitor()
	if err != nil {
		return nil, err
	}
	if op, ok := p.acceptOp("==", "!=", "<", "<=", ">", ">="); ok {
		right, err := p.bitor()
		if err != nil {
			return nil, err
		}
		return NewBoolOp(left, op, right), nil
	}
	return left, nil
}

func (p *exparser) bitor() (Expr, error)  { return p.binary(p.bitxor, "|") }
func (p *exparser) bitxor() (Expr, error) { return p.binary(p.bitand, "^") }
func (p *exparser) bitand() (Expr, error) { return p.binary(p.shift, "&") }
func (p *exparser) shift() (Expr, error)  { return p.binary(p.sum, "<<", ">>") }
func (p *exparser) sum() (Expr, error)    { return p.binary(p.product, "+", "-") }
func (p *exparser) product() (Expr, error) {
	return p.binary(p.power, "*", "//", "%")
}

func (p *exparser) binary(sub func() (Expr, error), ops ...string) (Expr, error) {
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := sub()
		if err != nil {
			return nil, err
		}
		left = NewOp(left, op, right)
	}
}

// power is right associative.
func (p *exparser) power() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("**"); !ok {
		return left, nil
	}
	right, err := p.power()
	if err != nil {
		return nil, err
	}
	return NewOp(left, "**", right), nil
}

func (p *exparser) unary() (Expr, error) {
	if op, ok := p.acceptOp("-", "~"); ok {
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return NewSOp(op, e), nil
	}
	return p.postfix()
}

func (p *exparser) postfix() (Expr, error) {
	e, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("["); !ok {
			return e, nil
		}
		sl, err := p.slice()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("]"); err != nil {
			return nil, err
		}
		e = NewSliceOp(e, sl)
	}
}

func (p *exparser) slice() (Slice, error) {
	left, err := p.constInt()
	if err != nil {
		return Slice{}, err
	}
	if _, ok := p.acceptOp(":"); !ok {
		return Idx(left), nil
	}
	right, err := p.constInt()
	if err != nil {
		return Slice{}, err
	}
	return SliceOf(left, right), nil
}

func (p *exparser) constInt() (int, error) {
	e, err := p.ternary()
	if err != nil {
		return 0, err
	}
	v, err := e.Int()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (p *exparser) atom() (Expr, error) {
	i := p.next()
	switch i.Type {
	case itemConst:
		return i.Value.(*ConstExpr), nil
	case itemName:
		name := i.Value.(string)
		switch name {
		case "min", "max", "log2", "abs":
			if _, ok := p.acceptOp("("); ok {
				return p.call(name)
			}
		}
		e, err := p.res(name)
		if err != nil {
			return nil, err
		}
		return e, nil
	case itemOp:
		if i.Value.(string) == "(" {
			e, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
		if i.Value.(string) == "{" {
			return p.concat()
		}
	case itemErr:
		return nil, p.errf(i, "%s", i.Value)
	case lex.EOF:
		return nil, p.errf(i, "unexpected end of input")
	}
	return nil, p.errf(i, "unexpected %v", i.Value)
}

func (p *exparser) call(name string) (Expr, error) {
	var args []Expr
	for {
		e, err := p.ternary()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if _, ok := p.acceptOp(","); !ok {
			break
		}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	switch name {
	case "min":
		return NewMinExpr(args...), nil
	case "max":
		return NewMaxExpr(args...), nil
	case "log2":
		if len(args) != 1 {
			return nil, p.errf(p.item, "log2 takes one argument")
		}
		return NewLog2Expr(args[0]), nil
	}
	if len(args) != 1 {
		return nil, p.errf(p.item, "abs takes one argument")
	}
	return NewSOp("abs", args[0]), nil
}

func (p *exparser) concat() (Expr, error) {
	var parts []Expr
	for {
		e, err := p.ternary()
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
		if _, ok := p.acceptOp(","); !ok {
			break
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return NewConcatExpr(parts...), nil
}
