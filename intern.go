package ucdp

import "sync"

// An Interner canonicalizes types and identifiers so that structurally equal
// constructions share one object and identity comparison is cheap. Dynamic
// types bypass it entirely.
type Interner struct {
	mu     sync.Mutex
	types  map[string]Type
	idents map[string]*Ident
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{
		types:  make(map[string]Type),
		idents: make(map[string]*Ident),
	}
}

// canon is the package wide interner. Tests reset it via ResetInterner.
var canon = NewInterner()

// ResetInterner discards all canonicalized objects. Existing types and
// identifiers stay valid but new constructions no longer alias them.
func ResetInterner() { canon = NewInterner() }

// SetInterner installs i as the package interner and returns the previous one.
func SetInterner(i *Interner) *Interner {
	prev := canon
	canon = i
	return prev
}

func (in *Interner) internType(t Type) Type {
	key := t.internKey()
	if key == "" {
		return t
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if have, ok := in.types[key]; ok {
		return have
	}
	in.types[key] = t
	return t
}

func (in *Interner) internIdent(id *Ident) *Ident {
	key := id.internKey()
	if key == "" {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if have, ok := in.idents[key]; ok {
		return have
	}
	in.idents[key] = id
	return id
}
