// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

// A Mux is a named multiplexer: a set of select expressions, each with
// condition branches driving targets. The first branch per target claims the
// driver; conditions of one select are evaluated in declaration order.
type Mux struct {
	mod      *Module
	name     string
	sels     []Expr
	branches map[string][]MuxBranch
	defaults []Assign
	claimed  map[string]bool
}

// A MuxBranch drives Target with Source when Cond holds.
type MuxBranch struct {
	Cond   Expr
	Target *Ident
	Source Expr
}

// AddMux adds a multiplexer named name.
func (m *Module) AddMux(name string) *Mux {
	m.mustOpen("add mux " + name)
	if err := ValidateIdentifier(name); err != nil {
		m.check(err)
	}
	if _, ok := m.muxmap[name]; ok {
		m.check(duplicateErrf("mux %q already exists", name))
	}
	x := &Mux{
		mod:      m,
		name:     name,
		branches: make(map[string][]MuxBranch),
		claimed:  make(map[string]bool),
	}
	m.muxmap[name] = x
	m.muxes = append(m.muxes, x)
	return x
}

// GetMux returns the multiplexer named name.
func (m *Module) GetMux(name string) *Mux {
	x, ok := m.muxmap[name]
	if !ok {
		var known []string
		for _, mx := range m.muxes {
			known = append(known, mx.name)
		}
		m.check(unknownNameErr(name, known))
	}
	return x
}

// Muxes returns the multiplexers in creation order.
func (m *Module) Muxes() []*Mux {
	return append([]*Mux(nil), m.muxes...)
}

// Name returns the multiplexer name.
func (x *Mux) Name() string { return x.name }

// Set adds a branch: when sel equals cond, target is driven by source. The
// first branch per target claims its driver.
func (x *Mux) Set(sel, cond, target, source string) {
	m := x.mod
	m.mustOpen("extend mux " + x.name)
	sexpr := m.Parse(sel)
	cexpr := m.Parse(cond)
	tid := m.Get(target)
	srcexpr := m.Parse(source)
	if !widthCompatible(tid.Type(), srcexpr.ExprType()) {
		m.check(typeErrf("mux %q: %q (%s) and %s differ in width",
			x.name, tid.Name(), tid.Type(), srcexpr))
	}
	x.claim(tid)
	key := sexpr.String()
	if _, ok := x.branches[key]; !ok {
		x.sels = append(x.sels, sexpr)
	}
	x.branches[key] = append(x.branches[key], MuxBranch{Cond: cexpr, Target: tid, Source: srcexpr})
}

// SetDefault drives target with source when no branch condition holds.
func (x *Mux) SetDefault(target, source string) {
	m := x.mod
	m.mustOpen("extend mux " + x.name)
	tid := m.Get(target)
	srcexpr := m.Parse(source)
	x.claim(tid)
	x.defaults = append(x.defaults, Assign{Target: tid, Source: srcexpr, Default: true})
}

func (x *Mux) claim(tid *Ident) {
	m := x.mod
	if x.claimed[tid.Name()] {
		return
	}
	span := SliceOf(tid.Type().Width()-1, 0)
	m.check(m.drivers.claim(tid.Name(), span, "mux "+x.name, false))
	x.claimed[tid.Name()] = true
}

// Sels returns the select expressions in declaration order.
func (x *Mux) Sels() []Expr {
	return append([]Expr(nil), x.sels...)
}

// Branches returns the branches of sel in declaration order.
func (x *Mux) Branches(sel Expr) []MuxBranch {
	return append([]MuxBranch(nil), x.branches[sel.String()]...)
}

// Defaults returns the default assignments in declaration order.
func (x *Mux) Defaults() []Assign {
	return append([]Assign(nil), x.defaults...)
}
