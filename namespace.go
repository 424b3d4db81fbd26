// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Idents is an ordered, lockable namespace of identifiers. Lookup resolves
// both top-level idents and their flattened sub-idents.
type Idents struct {
	names  []string
	byname map[string]*Ident
	locked bool
}

// NewIdents returns an empty namespace.
func NewIdents() *Idents {
	return &Idents{byname: make(map[string]*Ident)}
}

// Lock seals the namespace against further additions.
func (ns *Idents) Lock() { ns.locked = true }

// IsLocked reports whether the namespace is sealed.
func (ns *Idents) IsLocked() bool { return ns.locked }

// Len returns the number of top-level idents.
func (ns *Idents) Len() int { return len(ns.names) }

// Names returns the top-level names in insertion order.
func (ns *Idents) Names() []string {
	return append([]string(nil), ns.names...)
}

// Add appends id. It fails with a LockError on a sealed namespace and with
// a DuplicateError when the name is taken.
func (ns *Idents) Add(id *Ident) error {
	if ns.locked {
		return lockErrf("namespace is locked, cannot add %q", id.Name())
	}
	if have, ok := ns.byname[id.Name()]; ok {
		return duplicateErrf("%s %q already exists, cannot add %s %q",
			have.Kind(), have.Name(), id.Kind(), id.Name())
	}
	ns.names = append(ns.names, id.Name())
	ns.byname[id.Name()] = id
	return nil
}

// Get resolves name to a top-level ident or any flattened sub-ident. On a
// miss it returns an UnknownNameError listing the known names and, when
// close matches exist, suggestions.
func (ns *Idents) Get(name string) (*Ident, error) {
	if id, ok := ns.byname[name]; ok {
		return id, nil
	}
	for _, top := range ns.names {
		if sub, ok := ns.byname[top].Get(name); ok {
			return sub, nil
		}
	}
	return nil, unknownIdentErr(name, ns.Iter())
}

// GetTop resolves name to a top-level ident only.
func (ns *Idents) GetTop(name string) (*Ident, error) {
	if id, ok := ns.byname[name]; ok {
		return id, nil
	}
	var tops []*Ident
	for _, n := range ns.names {
		tops = append(tops, ns.byname[n])
	}
	return nil, unknownIdentErr(name, tops)
}

// unknownIdentErr builds the miss error for an ident namespace; the listing
// shows every resolvable name with its type in aligned columns.
func unknownIdentErr(name string, ids []*Ident) error {
	names := make([]string, len(ids))
	width := 0
	for i, id := range ids {
		names[i] = id.Name()
		if len(names[i]) > width {
			width = len(names[i])
		}
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprintf("%-*s  %s", width, id.Name(), id.Type())
	}
	return unknownNameLines(name, names, lines)
}

func unknownNameErr(name string, known []string) error {
	return unknownNameLines(name, known, known)
}

// unknownNameLines renders the miss error. known carries the bare names for
// suggestion ranking, lines the rendered listing entries.
func unknownNameLines(name string, known, lines []string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q is not known.", name)
	if len(lines) > 0 {
		sb.WriteString("\n\nKnown are:")
		for _, l := range lines {
			sb.WriteString("\n  ")
			sb.WriteString(l)
		}
		if sugg := suggest(name, known); len(sugg) > 0 {
			quoted := make([]string, len(sugg))
			for i, s := range sugg {
				quoted[i] = "'" + s + "'"
			}
			fmt.Fprintf(&sb, "\n\nDid you mean %s?", strings.Join(quoted, ", "))
		}
	}
	return &UnknownNameError{Name: name, Msg: sb.String()}
}

// suggest returns the known names closest to name, nearest first.
func suggest(name string, known []string) []string {
	type scored struct {
		name string
		dist int
	}
	var close []scored
	limit := len(name)/2 + 1
	for _, n := range known {
		if d := levenshtein.ComputeDistance(name, n); d <= limit {
			close = append(close, scored{n, d})
		}
	}
	sort.SliceStable(close, func(i, j int) bool { return close[i].dist < close[j].dist })
	if len(close) > 5 {
		close = close[:5]
	}
	out := make([]string, len(close))
	for i, s := range close {
		out[i] = s.name
	}
	return out
}

// FindFirst returns the first ident accepted by pred, descending into the
// flattened sub-idents of each top-level ident in declaration order.
func (ns *Idents) FindFirst(pred func(*Ident) bool) (*Ident, bool) {
	for _, n := range ns.names {
		for _, id := range ns.byname[n].Iter() {
			if pred(id) {
				return id, true
			}
		}
	}
	return nil, false
}

// Iter flattens all top-level idents in insertion order.
func (ns *Idents) Iter(opts ...IterOpt) []*Ident {
	var out []*Ident
	for _, n := range ns.names {
		out = append(out, ns.byname[n].Iter(opts...)...)
	}
	return out
}

// Leaves returns the scalar leaves of all top-level idents.
func (ns *Idents) Leaves() []*Ident {
	var out []*Ident
	for _, n := range ns.names {
		out = append(out, ns.byname[n].Leaves()...)
	}
	return out
}
