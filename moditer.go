// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import "strings"

// ModIterOpt configures module tree iteration.
type ModIterOpt func(*modIterCfg)

type modIterCfg struct {
	filter   func(*Module) bool
	stop     func(*Module) bool
	maxlevel int
	unique   bool
}

// ModFilter keeps only modules accepted by f; iteration still descends.
func ModFilter(f func(*Module) bool) ModIterOpt {
	return func(c *modIterCfg) { c.filter = f }
}

// ModStop excludes modules accepted by f together with their subtrees.
func ModStop(f func(*Module) bool) ModIterOpt {
	return func(c *modIterCfg) { c.stop = f }
}

// ModMaxLevel limits descent to n instance levels below the root.
func ModMaxLevel(n int) ModIterOpt {
	return func(c *modIterCfg) { c.maxlevel = n }
}

// Unique visits each module name once, first instance wins.
func Unique() ModIterOpt {
	return func(c *modIterCfg) { c.unique = true }
}

// ModPreIter walks the module tree parents first.
func ModPreIter(m *Module, opts ...ModIterOpt) []*Module {
	return modIter(m, false, opts)
}

// ModPostIter walks the module tree children first.
func ModPostIter(m *Module, opts ...ModIterOpt) []*Module {
	return modIter(m, true, opts)
}

func modIter(root *Module, post bool, opts []ModIterOpt) []*Module {
	cfg := modIterCfg{maxlevel: -1}
	for _, o := range opts {
		o(&cfg)
	}
	seen := make(map[string]bool)
	var out []*Module
	var walk func(m *Module, level int)
	walk = func(m *Module, level int) {
		if cfg.stop != nil && cfg.stop(m) {
			return
		}
		if cfg.unique {
			if seen[m.ModName()] {
				return
			}
			seen[m.ModName()] = true
		}
		take := cfg.filter == nil || cfg.filter(m)
		if take && !post {
			out = append(out, m)
		}
		if cfg.maxlevel < 0 || level < cfg.maxlevel {
			for _, c := range m.insts {
				walk(c, level+1)
			}
		}
		if take && post {
			out = append(out, m)
		}
	}
	walk(root, 0)
	return out
}

// Stats summarizes a module subtree.
type Stats struct {
	// Insts counts all module instances including the root.
	Insts int
	// Mods counts distinct module names.
	Mods int
}

// Stats returns instance and module counts of the subtree.
func (m *Module) Stats() Stats {
	return Stats{
		Insts: len(ModPreIter(m)),
		Mods:  len(ModPreIter(m, Unique())),
	}
}

// RelPath returns the route path form of to relative to from ("u_a/u_b",
// "../u_c"). Both modules must share a tree.
func RelPath(from, to *Module) (string, error) {
	anc := make(map[*Module]int)
	for m, ups := from, 0; m != nil; m, ups = m.parent, ups+1 {
		anc[m] = ups
	}
	var down []string
	for m := to; m != nil; m = m.parent {
		if ups, ok := anc[m]; ok {
			parts := make([]string, 0, ups+len(down))
			for i := 0; i < ups; i++ {
				parts = append(parts, "..")
			}
			for i := len(down) - 1; i >= 0; i-- {
				parts = append(parts, down[i])
			}
			if len(parts) == 0 {
				return ".", nil
			}
			return strings.Join(parts, "/"), nil
		}
		down = append(down, m.name)
	}
	return "", routeErrf("%s and %s do not share a tree", from.PathString(), to.PathString())
}
