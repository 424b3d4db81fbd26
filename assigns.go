// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import "fmt"

// Drivers is the per-module single-driver ledger. Every explicit assignment,
// instance connection, multiplexer output and flip-flop output claims the bit
// range it drives; overlapping explicit claims fail. A module shares one
// ledger across all its assignment surfaces.
type Drivers struct {
	claims map[string][]driverClaim
}

type driverClaim struct {
	slice Slice
	src   string
	deflt bool
}

// NewDrivers returns an empty ledger.
func NewDrivers() *Drivers {
	return &Drivers{claims: make(map[string][]driverClaim)}
}

// claim records src driving key over sl. Explicit claims may shadow a
// default, everything else overlapping is a MultiDriverError naming both
// drivers.
func (d *Drivers) claim(key string, sl Slice, src string, deflt bool) error {
	for _, c := range d.claims[key] {
		if !c.slice.Overlaps(sl) {
			continue
		}
		if c.deflt != deflt {
			// explicit beats default
			continue
		}
		return multiDriverErrf("%q already drives %q, cannot add %q", c.src, key, src)
	}
	d.claims[key] = append(d.claims[key], driverClaim{slice: sl, src: src, deflt: deflt})
	return nil
}

// dropDefault removes default claims of key overlapping sl.
func (d *Drivers) dropDefault(key string, sl Slice) {
	kept := d.claims[key][:0]
	for _, c := range d.claims[key] {
		if c.deflt && c.slice.Overlaps(sl) {
			continue
		}
		kept = append(kept, c)
	}
	d.claims[key] = kept
}

// Driven reports whether any bit of key has an explicit driver.
func (d *Drivers) Driven(key string) bool {
	for _, c := range d.claims[key] {
		if !c.deflt {
			return true
		}
	}
	return false
}

// An Assign is one resolved assignment: Source drives Target over
// TargetSlice (nil for the whole leaf).
type Assign struct {
	Target      *Ident
	TargetSlice *Slice
	Source      Expr
	Default     bool
}

// Assigns is an assignment ledger mapping target leaves to driving
// expressions. In instance mode the targets are the ports of a submodule
// instance and undriven input leaves are lazily seeded from same-named
// idents of the parent.
type Assigns struct {
	targets *Idents
	sources *Idents
	drivers *Drivers
	inst    string // instance name, "" for plain module assigns
	assigns map[string][]Assign
}

// NewAssigns returns an assignment ledger over targets, resolving sources in
// sources, claiming drivers in drivers.
func NewAssigns(targets, sources *Idents, drivers *Drivers) *Assigns {
	return &Assigns{
		targets: targets,
		sources: sources,
		drivers: drivers,
		assigns: make(map[string][]Assign),
	}
}

// NewInstAssigns returns a connection ledger for the instance named inst.
func NewInstAssigns(inst string, ports, sources *Idents, drivers *Drivers) *Assigns {
	a := NewAssigns(ports, sources, drivers)
	a.inst = inst
	return a
}

// Set assigns source to target. Composite targets expand leaf by leaf,
// backward leaves swap roles so the nominal source is driven by the nominal
// target.
func (a *Assigns) Set(target *Ident, source Expr) error {
	return a.set(target, nil, source, false, false)
}

// SetDefault assigns a default, which later explicit assignments override. A
// second default on the same bits is a MultiDriverError; use
// OverwriteDefault to replace one.
func (a *Assigns) SetDefault(target *Ident, source Expr) error {
	return a.set(target, nil, source, true, false)
}

// OverwriteDefault assigns a default, replacing any existing one.
func (a *Assigns) OverwriteDefault(target *Ident, source Expr) error {
	return a.set(target, nil, source, true, true)
}

// SetSlice assigns source to a bit range of a scalar target.
func (a *Assigns) SetSlice(target *Ident, sl Slice, source Expr) error {
	return a.set(target, &sl, source, false, false)
}

func (a *Assigns) set(target *Ident, sl *Slice, source Expr, deflt, overwrite bool) error {
	tleaves := target.Leaves()
	if len(tleaves) == 1 && tleaves[0] == target {
		return a.setLeaf(target, sl, source, deflt, overwrite, a.relLeaf(target, target))
	}
	if sl != nil {
		return typeErrf("cannot slice composite %q", target.Name())
	}
	sid, ok := source.(*Ident)
	if !ok {
		return typeErrf("composite %q needs an identifier source, got %s", target.Name(), source)
	}
	sleaves := sid.Leaves()
	if len(sleaves) != len(tleaves) {
		return typeErrf("%q and %q do not have the same shape (%d vs %d leaves)",
			target.Name(), sid.Name(), len(tleaves), len(sleaves))
	}
	for i, tl := range tleaves {
		srcl := sleaves[i]
		if tl.Type().Width() != srcl.Type().Width() {
			return typeErrf("%q (%s) and %q (%s) differ in width",
				tl.Name(), tl.Type(), srcl.Name(), srcl.Type())
		}
		if err := a.setLeaf(tl, nil, srcl, deflt, overwrite, a.relLeaf(target, tl)); err != nil {
			return err
		}
	}
	return nil
}

// relLeaf returns the flow of a target leaf relative to the assignment: BWD
// swaps driver and driven. Module assigns derive it from the leaf orientation
// within the target root; instance connections derive it from the absolute
// port direction, so outputs of the instance drive the nominal source.
func (a *Assigns) relLeaf(root, leaf *Ident) Orient {
	if a.inst != "" {
		if leaf.Kind() == PortIdent && leaf.Dir() == OUT {
			return BWD
		}
		return FWD
	}
	if root == leaf {
		return FWD
	}
	rel := leaf.Dir()
	if root.Dir() != BIDIR {
		rel = rel.Mul(root.Dir())
	}
	return rel
}

// setLeaf records one leaf pair. rel is the leaf orientation relative to the
// nominal target root: BWD swaps driver and driven.
func (a *Assigns) setLeaf(target *Ident, sl *Slice, source Expr, deflt, overwrite bool, rel Orient) error {
	driven, driving := target, source
	if rel == BWD {
		sid, ok := source.(*Ident)
		if !ok {
			return directionErrf("backward leaf %q cannot drive expression %s", target.Name(), source)
		}
		driven, driving = sid, target
	}
	if err := a.checkDriven(driven, rel == BWD); err != nil {
		return err
	}
	if sl == nil && !widthCompatible(driven.Type(), driving.ExprType()) {
		return typeErrf("%q (%s) cannot be driven by %s (%s)",
			driven.Name(), driven.Type(), driving, driving.ExprType())
	}
	key := a.drivenKey(driven, rel == BWD)
	span := SliceOf(driven.Type().Width()-1, 0)
	if sl != nil {
		span = *sl
	}
	// entries are stored under the nominal target so that iteration follows
	// the target namespace, even when the flow is swapped
	storeKey := key
	if rel == BWD && a.inst != "" {
		storeKey = a.inst + "." + target.Name()
	}
	if deflt && overwrite {
		a.drivers.dropDefault(key, span)
		kept := a.assigns[storeKey][:0]
		for _, e := range a.assigns[storeKey] {
			if e.Default {
				continue
			}
			kept = append(kept, e)
		}
		a.assigns[storeKey] = kept
	}
	if err := a.drivers.claim(key, span, driving.String(), deflt); err != nil {
		return err
	}
	a.assigns[storeKey] = append(a.assigns[storeKey], Assign{
		Target:      driven,
		TargetSlice: sl,
		Source:      driving,
		Default:     deflt,
	})
	return nil
}

// checkDriven validates that id may be driven here. swapped marks a leaf
// reached through a backward member, i.e. an ident of the source side.
func (a *Assigns) checkDriven(id *Ident, swapped bool) error {
	switch id.Kind() {
	case ParamIdent, ConstIdent:
		return directionErrf("cannot drive %s %q", id.Kind(), id.Name())
	case SignalIdent:
		return nil
	}
	if a.inst != "" && !swapped {
		// instance ports: the parent drives the instance inputs
		if id.Dir() == OUT {
			return directionErrf("cannot drive output %q of instance %q", id.Name(), a.inst)
		}
		return nil
	}
	if id.Dir() == IN {
		return directionErrf("cannot drive input %q", id.Name())
	}
	return nil
}

// drivenKey returns the ledger key: driven instance leaves are scoped by the
// instance name, everything else lives in the parent's flat space.
func (a *Assigns) drivenKey(id *Ident, swapped bool) string {
	if a.inst != "" && !swapped {
		return a.inst + "." + id.Name()
	}
	return id.Name()
}

// Iter returns the resolved assignments in target declaration order.
// Explicit assignments suppress defaults on the same leaf. In instance mode,
// undriven input leaves yield a connection to the same-named parent ident
// when one exists.
func (a *Assigns) Iter() []Assign {
	var out []Assign
	for _, leaf := range a.targets.Leaves() {
		switch leaf.Type().(type) {
		case *ScalarType, *EnumType:
		default:
			continue
		}
		key := a.drivenKey(leaf, false)
		entries := a.assigns[key]
		explicit := false
		for _, e := range entries {
			if !e.Default {
				explicit = true
			}
		}
		for _, e := range entries {
			if e.Default && explicit {
				continue
			}
			out = append(out, e)
		}
		if len(entries) == 0 && a.inst != "" && leaf.Kind() == PortIdent && leaf.Dir() != OUT {
			if src, err := a.sources.Get(leaf.Name()); err == nil {
				out = append(out, Assign{Target: leaf, Source: src, Default: true})
			}
		}
	}
	return out
}

// Used reports whether target has any recorded assignment.
func (a *Assigns) Used(target *Ident) bool {
	return len(a.assigns[a.drivenKey(target, false)]) > 0
}

func (a *Assigns) String() string {
	if a.inst != "" {
		return fmt.Sprintf("Assigns(%s)", a.inst)
	}
	return "Assigns()"
}
