// Package lex implements a small state-function based lexer used by the
// expression parser.
package lex

import "io"

// Pos is a rune position in the input.
type Pos int

// Type is a lexeme type. Values >= 0 are client defined.
type Type int

// EOF is the end-of-input lexeme type.
const EOF Type = -1

// An Item is a lexeme with its position and value. The value type depends on
// the lexeme type (string for identifiers, int for numbers, etc.).
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

// A StateFn scans a lexeme and returns the next state function, or nil to
// return to the initial state.
type StateFn func(*Lexer) StateFn

// Interface is the lexer interface used by parsers.
type Interface interface {
	Lex() Item
}

// A Lexer scans an input stream by running state functions.
type Lexer struct {
	r     io.RuneReader
	init  StateFn
	state StateFn
	queue []Item
	cur   rune
	pos   Pos
	start Pos
	undo  bool
	eof   bool
}

// New returns a new lexer reading from r with init as its initial state.
func New(r io.RuneReader, init StateFn) *Lexer {
	return &Lexer{r: r, init: init, state: init, pos: -1}
}

// Lex returns the next lexeme. Once the input is exhausted, Lex keeps
// returning EOF items.
func (l *Lexer) Lex() Item {
	for len(l.queue) == 0 {
		l.start = l.pos + 1
		if l.undo {
			l.start = l.pos
		}
		st := l.state(l)
		if st == nil {
			st = l.init
		}
		l.state = st
	}
	i := l.queue[0]
	l.queue = l.queue[1:]
	return i
}

// Next consumes and returns the next input rune, or EOF.
func (l *Lexer) Next() rune {
	if l.undo {
		l.undo = false
		return l.cur
	}
	if l.eof {
		return rune(EOF)
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		l.eof = true
		l.cur = rune(EOF)
		return l.cur
	}
	l.pos++
	l.cur = r
	return r
}

// Current returns the last rune read by Next.
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup un-reads the current rune. Only one rune of lookahead is supported.
func (l *Lexer) Backup() {
	if !l.eof {
		l.undo = true
	}
}

// AcceptWhile consumes runes while pred holds.
func (l *Lexer) AcceptWhile(pred func(r rune) bool) {
	for {
		r := l.Next()
		if r == rune(EOF) || !pred(r) {
			l.Backup()
			return
		}
	}
}

// Emit queues a lexeme starting at the current scan position.
func (l *Lexer) Emit(t Type, value interface{}) {
	l.queue = append(l.queue, Item{Type: t, Pos: l.start, Value: value})
}
