// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import "strings"

// A FlipFlop is a register bank of a module: all registers sharing one
// clock, one async reset and optional synchronous reset and enable
// conditions. Register outputs claim their driver like any other
// assignment.
type FlipFlop struct {
	mod     *Module
	clk     *Ident
	rstAn   *Ident
	rst     Expr
	ena     Expr
	assigns *Assigns
}

// FFOpt configures a register bank.
type FFOpt func(*ffCfg)

type ffCfg struct {
	clk, rstAn string
	rst, ena   string
}

// WithClk selects the clock by name instead of the first clock port.
func WithClk(name string) FFOpt {
	return func(c *ffCfg) { c.clk = name }
}

// WithRstAn selects the async reset by name instead of the first reset port.
func WithRstAn(name string) FFOpt {
	return func(c *ffCfg) { c.rstAn = name }
}

// WithRst adds a synchronous reset condition.
func WithRst(cond string) FFOpt {
	return func(c *ffCfg) { c.rst = cond }
}

// WithEna adds an enable condition.
func WithEna(cond string) FFOpt {
	return func(c *ffCfg) { c.ena = cond }
}

// AddFlipFlop returns the register bank for the given clock, reset and
// conditions, creating it on first use. Clock and async reset default to the
// first matching ports of the module.
func (m *Module) AddFlipFlop(opts ...FFOpt) *FlipFlop {
	m.mustOpen("add flipflop")
	var cfg ffCfg
	for _, o := range opts {
		o(&cfg)
	}
	clk := m.findDefault(cfg.clk, IsClkType, "clock")
	rstAn := m.findDefault(cfg.rstAn, IsRstAnType, "async reset")
	var rst, ena Expr
	if cfg.rst != "" {
		rst = m.parseCond(cfg.rst)
	}
	if cfg.ena != "" {
		ena = m.parseCond(cfg.ena)
	}
	key := strings.Join([]string{clk.Name(), rstAn.Name(), cfg.rst, cfg.ena}, "/")
	if ff, ok := m.ffmap[key]; ok {
		return ff
	}
	ff := &FlipFlop{
		mod:     m,
		clk:     clk,
		rstAn:   rstAn,
		rst:     rst,
		ena:     ena,
		assigns: NewAssigns(m.namespace, m.namespace, m.drivers),
	}
	m.ffmap[key] = ff
	m.flipflops = append(m.flipflops, ff)
	return ff
}

// FlipFlops returns the register banks in creation order.
func (m *Module) FlipFlops() []*FlipFlop {
	return append([]*FlipFlop(nil), m.flipflops...)
}

func (m *Module) findDefault(name string, pred func(Type) bool, what string) *Ident {
	if name != "" {
		return m.Get(name)
	}
	id, ok := m.namespace.FindFirst(func(i *Ident) bool { return pred(i.Type()) })
	if !ok {
		m.check(typeErrf("no %s found", what))
	}
	return id
}

// parseCond parses a single-bit condition expression.
func (m *Module) parseCond(text string) Expr {
	e := m.Parse(text)
	if !IsBoolType(e.ExprType()) {
		m.check(typeErrf("condition %q is not a single bit", text))
	}
	return e
}

// Clk returns the clock leaf.
func (ff *FlipFlop) Clk() *Ident { return ff.clk }

// RstAn returns the async reset leaf.
func (ff *FlipFlop) RstAn() *Ident { return ff.rstAn }

// Rst returns the synchronous reset condition, nil if none.
func (ff *FlipFlop) Rst() Expr { return ff.rst }

// Ena returns the enable condition, nil if none.
func (ff *FlipFlop) Ena() Expr { return ff.ena }

// Add creates the register signal named name and registers it in this bank.
// Options apply to the created signal, so WithRoute wires the register
// output at declaration. The next value comes from the auto-created
// "<base>_nxt_s" signal.
func (ff *FlipFlop) Add(typ Type, name string, opts ...IdentOpt) *Ident {
	ff.mod.AddSignal(typ, name, opts...)
	return ff.Set(name)
}

// Set registers target in this bank, driven by source on every clock edge.
// Without a source, a next-value signal named after the register ("data_r"
// gets "data_nxt_s") is created and used.
func (ff *FlipFlop) Set(target string, source ...string) *Ident {
	m := ff.mod
	m.mustOpen("add register " + target)
	tid := m.Get(target)
	var src Expr
	if len(source) > 0 {
		src = m.Parse(source[0])
	} else {
		base, _ := SplitSuffix(tid.Name())
		name := base + "_nxt_s"
		if have, err := m.namespace.Get(name); err == nil {
			src = have
		} else {
			src = m.AddSignal(tid.Type(), name)
		}
	}
	m.check(ff.assigns.Set(tid, src))
	return tid
}

// Iter returns the registered target/next pairs in declaration order.
func (ff *FlipFlop) Iter() []Assign { return ff.assigns.Iter() }
