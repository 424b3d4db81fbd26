// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"
)

// An EnumItem is one key/name pair of an enumeration.
type EnumItem struct {
	Key  int64
	Name string
	Doc  Doc
}

// Auto requests the next free enumeration key, one past the current maximum.
const Auto = int64(-1 << 63)

// An EnumType is a scalar carrying a closed set of named values. The key
// type fixes width, signedness and default.
type EnumType struct {
	name    string
	keytype *ScalarType
	items   []EnumItem
	doc     Doc
	dynamic bool
}

// An EnumBuilder populates an enumeration during construction.
type EnumBuilder struct {
	t *EnumType
}

// Add appends an item. Key may be Auto. Duplicate keys or names panic with
// a DuplicateError.
func (b *EnumBuilder) Add(key int64, name string) *EnumItem {
	return b.AddWithDoc(key, name, Doc{})
}

// AddWithDoc appends a documented item.
func (b *EnumBuilder) AddWithDoc(key int64, name string, doc Doc) *EnumItem {
	t := b.t
	if key == Auto {
		key = 0
		for _, it := range t.items {
			if it.Key >= key {
				key = it.Key + 1
			}
		}
	}
	for _, it := range t.items {
		if it.Key == key {
			panic(duplicateErrf("key %d already exists in %s", key, t))
		}
		if it.Name == name {
			panic(duplicateErrf("name %q already exists in %s", name, t))
		}
	}
	if !t.keytype.fits(key) {
		panic(typeErrf("key %d does not fit %s of %s", key, t.keytype, t))
	}
	t.items = append(t.items, EnumItem{Key: key, Name: name, Doc: doc})
	return &t.items[len(t.items)-1]
}

// NewEnumType builds an enumeration named name over keytype, populated by
// build. Non-dynamic enumerations are canonical.
func NewEnumType(name string, keytype *ScalarType, build func(*EnumBuilder), opts ...TypeOpt) *EnumType {
	c := applyTypeOpts(opts)
	if err := ValidateIdentifier(strings.ToLower(name)); err != nil {
		panic(err)
	}
	t := &EnumType{name: name, keytype: keytype, doc: c.doc, dynamic: c.dynamic}
	if build != nil {
		build(&EnumBuilder{t: t})
	}
	return canon.internType(t).(*EnumType)
}

// Name returns the type name.
func (t *EnumType) Name() string { return t.name }

// KeyType returns the underlying scalar type.
func (t *EnumType) KeyType() *ScalarType { return t.keytype }

// Items returns the enumeration items in declaration order.
func (t *EnumType) Items() []EnumItem { return t.items }

// Item returns the item with the given name.
func (t *EnumType) Item(name string) (EnumItem, bool) {
	for _, it := range t.items {
		if it.Name == name {
			return it, true
		}
	}
	return EnumItem{}, false
}

// Width returns the key type width.
func (t *EnumType) Width() int { return t.keytype.Width() }

// Default returns the key type default.
func (t *EnumType) Default() int64 { return t.keytype.Default() }

// TypeDoc returns the documentation attached to the type.
func (t *EnumType) TypeDoc() Doc { return t.doc }

func (t *EnumType) String() string { return t.name + "()" }

func (t *EnumType) internKey() string {
	if t.dynamic {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "enum:%s:%s", t.name, t.keytype.internKey())
	for _, it := range t.items {
		fmt.Fprintf(&sb, ":%d=%s/%s/%s/%s", it.Key, it.Name, it.Doc.Title, it.Doc.Descr, it.Doc.Comment)
	}
	return sb.String()
}
