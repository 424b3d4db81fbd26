// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"
)

// A StructMember is one named, oriented field of a struct type. Orient is
// relative to the struct as a whole: FWD members travel with the struct,
// BWD members against it.
type StructMember struct {
	Name   string
	Type   Type
	Orient Orient
	Doc    Doc
}

// A StructType is a named bundle of oriented members. Non-dynamic struct
// types are canonical and sealed after construction. Dynamic ones stay open
// and accept further members through AddMember.
type StructType struct {
	name    string
	members []StructMember
	doc     Doc
	dynamic bool
	// display overrides the rendered name when non-empty.
	display string
}

// A StructBuilder populates a struct type during construction.
type StructBuilder struct {
	t *StructType
}

// Add appends a member. The orientation defaults to FWD.
func (b *StructBuilder) Add(name string, typ Type, orient ...Orient) {
	o := FWD
	if len(orient) > 0 {
		o = orient[0]
	}
	b.t.addMember(name, typ, o, Doc{})
}

// AddWithDoc appends a documented member.
func (b *StructBuilder) AddWithDoc(name string, typ Type, orient Orient, doc Doc) {
	b.t.addMember(name, typ, orient, doc)
}

func (t *StructType) addMember(name string, typ Type, orient Orient, doc Doc) {
	if err := ValidateIdentifier(name); err != nil {
		panic(err)
	}
	for _, m := range t.members {
		if m.Name == name {
			panic(duplicateErrf("member %q already exists in %s", name, t))
		}
	}
	t.members = append(t.members, StructMember{Name: name, Type: typ, Orient: orient, Doc: doc})
}

// NewStructType builds a struct type named name, populated by build.
// Non-dynamic struct types are canonical.
func NewStructType(name string, build func(*StructBuilder), opts ...TypeOpt) *StructType {
	c := applyTypeOpts(opts)
	if err := ValidateIdentifier(strings.ToLower(name)); err != nil {
		panic(err)
	}
	t := &StructType{name: name, doc: c.doc, dynamic: c.dynamic}
	if build != nil {
		build(&StructBuilder{t: t})
	}
	if t.dynamic {
		return t
	}
	return canon.internType(t).(*StructType)
}

// AddMember appends a member to a dynamic struct type after construction.
func (t *StructType) AddMember(name string, typ Type, orient ...Orient) {
	if !t.dynamic {
		panic(lockErrf("%s is not dynamic, cannot add member %q", t, name))
	}
	o := FWD
	if len(orient) > 0 {
		o = orient[0]
	}
	t.addMember(name, typ, o, Doc{})
}

// Name returns the type name.
func (t *StructType) Name() string { return t.name }

// Members returns the members in declaration order.
func (t *StructType) Members() []StructMember { return t.members }

// Member returns the member with the given name.
func (t *StructType) Member(name string) (StructMember, bool) {
	for _, m := range t.members {
		if m.Name == name {
			return m, true
		}
	}
	return StructMember{}, false
}

// TypeDoc returns the documentation attached to the type.
func (t *StructType) TypeDoc() Doc { return t.doc }

// Width returns the summed width of all members.
func (t *StructType) Width() int {
	w := 0
	for _, m := range t.members {
		w += m.Type.Width()
	}
	return w
}

// FwdWidth returns the summed width of all scalar leaves traveling with the
// struct.
func (t *StructType) FwdWidth() int { return t.orientWidth(FWD) }

// BwdWidth returns the summed width of all scalar leaves traveling against
// the struct.
func (t *StructType) BwdWidth() int { return t.orientWidth(BWD) }

// BiWidth returns the summed width of all bidirectional scalar leaves.
func (t *StructType) BiWidth() int { return t.orientWidth(BIDIR) }

func (t *StructType) orientWidth(want Orient) int {
	w := 0
	for _, e := range typeLeaves("", t, FWD) {
		if e.orient == want {
			w += e.typ.Width()
		}
	}
	return w
}

// Default returns 0; struct values have no scalar default.
func (t *StructType) Default() int64 { return 0 }

func (t *StructType) String() string {
	if t.display != "" {
		return t.display
	}
	return t.name + "()"
}

func (t *StructType) internKey() string {
	if t.dynamic {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct:%s:%s", t.name, t.display)
	for _, m := range t.members {
		mk := m.Type.internKey()
		if mk == "" {
			return ""
		}
		fmt.Fprintf(&sb, ":%s@%d(%s)/%s/%s/%s", m.Name, m.Orient, mk, m.Doc.Title, m.Doc.Descr, m.Doc.Comment)
	}
	return sb.String()
}

// typeEntry is one scalar leaf reached while flattening a composite type.
type typeEntry struct {
	name   string
	typ    Type
	orient Orient
	dims   []Slice
}

// typeLeaves flattens t into its scalar and enum leaves. Member names are
// joined with "_", array levels are recorded as dims and orientations are
// multiplied along the path.
func typeLeaves(prefix string, t Type, orient Orient) []typeEntry {
	return appendLeaves(nil, prefix, t, orient, nil)
}

func appendLeaves(dst []typeEntry, prefix string, t Type, orient Orient, dims []Slice) []typeEntry {
	switch tt := t.(type) {
	case *StructType:
		for _, m := range tt.members {
			dst = appendLeaves(dst, JoinNames("_", prefix, m.Name), m.Type, orient.Mul(m.Orient), dims)
		}
	case *ArrayType:
		nd := make([]Slice, len(dims)+1)
		copy(nd, dims)
		nd[len(dims)] = SliceOf(0, tt.length-1)
		dst = appendLeaves(dst, prefix, tt.elem, orient, nd)
	default:
		dst = append(dst, typeEntry{name: prefix, typ: t, orient: orient, dims: dims})
	}
	return dst
}

// ClkRstAnType returns the standard clock and async reset bundle.
func ClkRstAnType() *StructType {
	return NewStructType("ClkRstAnType", func(b *StructBuilder) {
		b.AddWithDoc("clk", ClkType(), FWD, Doc{Title: "Clock"})
		b.AddWithDoc("rst_an", RstAnType(), FWD, Doc{Title: "Async Reset (Low-Active)"})
	}, WithTypeDoc(Doc{Title: "Clock and Reset"}))
}

// DescriptiveStructType returns a struct of integer constants describing the
// layout of t: total, forward, backward and bidirectional widths, plus one
// constant per item when t is an enumeration.
func DescriptiveStructType(t Type) *StructType {
	d := &StructType{
		name:    "DescriptiveStructType",
		display: fmt.Sprintf("DescriptiveStructType(%s)", t),
	}
	d.addMember("bits_p", IntegerType(Default(int64(t.Width()))), FWD, Doc{Title: "Width in Bits"})
	if st, ok := t.(*StructType); ok {
		d.addMember("fwdbits_p", IntegerType(Default(int64(st.FwdWidth()))), FWD, Doc{Title: "Forward Width in Bits"})
		d.addMember("bwdbits_p", IntegerType(Default(int64(st.BwdWidth()))), FWD, Doc{Title: "Backward Width in Bits"})
		d.addMember("bibits_p", IntegerType(Default(int64(st.BiWidth()))), FWD, Doc{Title: "Bidirectional Width in Bits"})
	}
	if et, ok := t.(*EnumType); ok {
		for _, it := range et.Items() {
			d.addMember(it.Name+"_e", IntegerType(Default(it.Key)), FWD, it.Doc)
		}
	}
	return canon.internType(d).(*StructType)
}
