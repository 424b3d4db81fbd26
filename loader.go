// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import "strings"

// A Registry holds module specs by name and elaborates them from textual
// references of the form
//
//	top          elaborate spec "top"
//	top-sub      elaborate "top", return the submodule named "sub"
//	tb#top       elaborate testbench "tb" around "top"
type Registry struct {
	order []string
	specs map[string]*ModSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*ModSpec)}
}

// Register adds spec under its name.
func (r *Registry) Register(spec *ModSpec) error {
	if spec.Name == "" {
		return typeErrf("module spec without name")
	}
	if _, ok := r.specs[spec.Name]; ok {
		return duplicateErrf("spec %q already exists", spec.Name)
	}
	r.order = append(r.order, spec.Name)
	r.specs[spec.Name] = spec
	return nil
}

// Names returns the registered spec names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns the spec registered under name.
func (r *Registry) Get(name string) (*ModSpec, error) {
	if s, ok := r.specs[name]; ok {
		return s, nil
	}
	return nil, unknownNameErr(name, r.Names())
}

// Load elaborates the module named by ref and returns it, or the addressed
// submodule of it.
func (r *Registry) Load(ref string, opts ...ModOpt) (*Module, error) {
	tbName := ""
	rest := ref
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		tbName, rest = ref[:i], ref[i+1:]
	}
	topName := rest
	subName := ""
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		topName, subName = rest[:i], rest[i+1:]
	}
	topSpec, err := r.Get(topName)
	if err != nil {
		return nil, err
	}
	var top *Module
	if tbName != "" {
		tbSpec, err := r.Get(tbName)
		if err != nil {
			return nil, err
		}
		if tbSpec.Flags&ModTestbench == 0 {
			return nil, typeErrf("%q is not a testbench", tbName)
		}
		top, err = NewTop(tbSpec, append(opts, WithDUT(topSpec))...)
		if err != nil {
			return nil, err
		}
	} else {
		top, err = NewTop(topSpec, opts...)
		if err != nil {
			return nil, err
		}
	}
	if subName == "" {
		return top, nil
	}
	var known []string
	for _, m := range ModPreIter(top) {
		if m.Spec().Name == subName || m.ModName() == subName {
			return m, nil
		}
		known = append(known, m.Spec().Name)
	}
	return nil, unknownNameErr(subName, known)
}
