// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"
)

// IdentKind distinguishes ports, signals, parameters and constants.
type IdentKind uint8

const (
	PortIdent IdentKind = iota
	SignalIdent
	ParamIdent
	ConstIdent
)

func (k IdentKind) String() string {
	switch k {
	case PortIdent:
		return "Port"
	case SignalIdent:
		return "Signal"
	case ParamIdent:
		return "Param"
	case ConstIdent:
		return "Const"
	}
	return fmt.Sprintf("IdentKind(%d)", int(k))
}

// An Ident is a named, typed object of a module: a port, signal, parameter
// or constant. Composite idents flatten into sub-idents through Iter.
// Idents over non-dynamic types are canonical.
type Ident struct {
	typ   Type
	name  string
	kind  IdentKind
	dir   Orient
	level int
	dims  []Slice
	doc   Doc
	value Expr
}

func newIdent(kind IdentKind, typ Type, name string, dir Orient, doc Doc, value Expr) *Ident {
	if name != "" {
		base, _ := SplitSuffix(name)
		if base == "" {
			base = name
		}
		if err := ValidateIdentifier(base); err != nil {
			panic(err)
		}
	}
	if kind == PortIdent && name != "" {
		if d, ok := DirectionFromName(name); ok && d != dir {
			panic(directionErrf("port %q: name implies %s, got %s", name, d.DirString(), dir.DirString()))
		}
	}
	if doc.IsEmpty() {
		switch tt := typ.(type) {
		case *StructType:
			doc = tt.TypeDoc()
		case *EnumType:
			doc = tt.TypeDoc()
		}
	}
	id := &Ident{typ: typ, name: name, kind: kind, dir: dir, doc: doc, value: value}
	return canon.internIdent(id)
}

// NewPort returns a canonical port ident. The direction must agree with the
// name suffix.
func NewPort(typ Type, name string, dir Orient, doc ...Doc) *Ident {
	d := Doc{}
	if len(doc) > 0 {
		d = doc[0]
	}
	return newIdent(PortIdent, typ, name, dir, d, nil)
}

// NewSignal returns a canonical signal ident.
func NewSignal(typ Type, name string, doc ...Doc) *Ident {
	d := Doc{}
	if len(doc) > 0 {
		d = doc[0]
	}
	return newIdent(SignalIdent, typ, name, FWD, d, nil)
}

// Type returns the ident type.
func (id *Ident) Type() Type { return id.typ }

// Name returns the full name including any suffix.
func (id *Ident) Name() string { return id.name }

// Basename returns the name without its role suffix.
func (id *Ident) Basename() string {
	base, _ := SplitSuffix(id.name)
	return base
}

// Kind returns the ident kind.
func (id *Ident) Kind() IdentKind { return id.kind }

// Dir returns the effective orientation.
func (id *Ident) Dir() Orient { return id.dir }

// Level returns the struct nesting depth, 0 for a top-level ident.
func (id *Ident) Level() int { return id.level }

// Dims returns the array dimensions accumulated above this ident.
func (id *Ident) Dims() []Slice { return id.dims }

// IdentDoc returns the documentation.
func (id *Ident) IdentDoc() Doc { return id.doc }

// Value returns the attached constant expression, nil if none.
func (id *Ident) Value() Expr { return id.value }

// ExprType returns the ident type; idents are expressions.
func (id *Ident) ExprType() Type { return id.typ }

// Int returns the constant value of a parameter or constant.
func (id *Ident) Int() (int64, error) {
	if id.value != nil {
		return id.value.Int()
	}
	if id.kind == ParamIdent || id.kind == ConstIdent {
		return id.typ.Default(), nil
	}
	return 0, typeErrf("%s %q is not constant", id.kind, id.name)
}

func (id *Ident) String() string { return id.name }

func (id *Ident) internKey() string {
	tk := id.typ.internKey()
	if tk == "" {
		return ""
	}
	val := ""
	if id.value != nil {
		val = id.value.String()
	}
	dims := make([]string, len(id.dims))
	for i, d := range id.dims {
		dims[i] = d.String()
	}
	return fmt.Sprintf("%d:%s:%d:%d:%s:%s/%s/%s:%s:%s",
		id.kind, id.name, id.dir, id.level, tk,
		id.doc.Title, id.doc.Descr, id.doc.Comment,
		strings.Join(dims, ","), val)
}

// subName derives the name of a struct member sub-ident. Ports re-derive the
// suffix from the effective direction, all other kinds keep their suffix.
func (id *Ident) subName(member string, dir Orient) string {
	base, suffix := SplitSuffix(id.name)
	if id.kind == PortIdent {
		suffix = dirSuffix(dir)
	}
	return JoinNames("_", base, member) + suffix
}

// unwrapArrays folds array levels into the dims of the ident, keeping its
// name and position.
func (id *Ident) unwrapArrays() *Ident {
	for {
		at, ok := id.typ.(*ArrayType)
		if !ok {
			return id
		}
		nd := make([]Slice, len(id.dims)+1)
		copy(nd, id.dims)
		nd[len(id.dims)] = SliceOf(0, at.Len()-1)
		id = canon.internIdent(&Ident{
			typ:   at.Elem(),
			name:  id.name,
			kind:  id.kind,
			dir:   id.dir,
			level: id.level,
			dims:  nd,
			doc:   id.doc,
		})
	}
}

// children returns the immediate sub-idents, one per struct member. Scalars
// and enumerations have none; array levels are folded by unwrapArrays before
// a node surfaces.
func (id *Ident) children() []*Ident {
	tt, ok := id.typ.(*StructType)
	if !ok {
		return nil
	}
	subs := make([]*Ident, 0, len(tt.Members()))
	for _, m := range tt.Members() {
		dir := id.dir.Mul(m.Orient)
		sub := &Ident{
			typ:   m.Type,
			name:  id.subName(m.Name, dir),
			kind:  id.kind,
			dir:   dir,
			level: id.level + 1,
			dims:  id.dims,
			doc:   m.Doc,
		}
		subs = append(subs, canon.internIdent(sub))
	}
	return subs
}

// IterOpt configures ident iteration.
type IterOpt func(*iterCfg)

type iterCfg struct {
	filter   func(*Ident) bool
	stop     func(*Ident) bool
	maxlevel int
}

// WithFilter keeps only idents accepted by f; iteration still descends.
func WithFilter(f func(*Ident) bool) IterOpt {
	return func(c *iterCfg) { c.filter = f }
}

// WithStop excludes idents accepted by f together with their subtrees.
func WithStop(f func(*Ident) bool) IterOpt {
	return func(c *iterCfg) { c.stop = f }
}

// MaxLevel limits descent to n struct nesting levels below the root.
func MaxLevel(n int) IterOpt {
	return func(c *iterCfg) { c.maxlevel = n }
}

// Iter flattens the ident pre-order: the ident itself first, then every
// struct member recursively. Array levels fold into the member node, which
// carries the element type and the accumulated dimension slices.
// Enumerations are leaves.
func (id *Ident) Iter(opts ...IterOpt) []*Ident {
	cfg := iterCfg{maxlevel: -1}
	for _, o := range opts {
		o(&cfg)
	}
	var out []*Ident
	var walk func(n *Ident)
	walk = func(n *Ident) {
		n = n.unwrapArrays()
		if cfg.stop != nil && cfg.stop(n) {
			return
		}
		if cfg.filter == nil || cfg.filter(n) {
			out = append(out, n)
		}
		for _, c := range n.children() {
			if cfg.maxlevel >= 0 && c.level-id.level > cfg.maxlevel {
				continue
			}
			walk(c)
		}
	}
	walk(id)
	return out
}

// Leaves returns the scalar and enumeration leaves of the ident.
func (id *Ident) Leaves() []*Ident {
	return id.Iter(WithFilter(func(n *Ident) bool {
		_, isStruct := n.typ.(*StructType)
		return !isStruct
	}))
}

// Get resolves a (possibly nested) sub-ident by full name.
func (id *Ident) Get(name string) (*Ident, bool) {
	for _, n := range id.Iter() {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}
