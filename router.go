// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import "strings"

// A RoutePath addresses an ident relative to a module:
//
//	"sig_s"          local ident
//	"u_sub/port_i"   port (or core signal) of an instance
//	"../sig_s"       ident one level up
//	"create(path)"   create the addressed ident on demand
type RoutePath struct {
	Path   string
	Create bool
	Ups    int
}

// ParseRoutePath parses the textual route path form.
func ParseRoutePath(s string) (RoutePath, error) {
	var rp RoutePath
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "create(") {
		if !strings.HasSuffix(s, ")") {
			return rp, routeErrf("malformed route path %q", s)
		}
		rp.Create = true
		s = strings.TrimSpace(s[len("create(") : len(s)-1])
	}
	for strings.HasPrefix(s, "../") {
		rp.Ups++
		s = s[len("../"):]
	}
	if s == "" {
		return rp, routeErrf("empty route path")
	}
	rp.Path = s
	return rp, nil
}

func (rp RoutePath) String() string {
	s := strings.Repeat("../", rp.Ups) + rp.Path
	if rp.Create {
		return "create(" + s + ")"
	}
	return s
}

func (rp RoutePath) segs() []string { return strings.Split(rp.Path, "/") }

type routeReq struct {
	target RoutePath
	source RoutePath
}

// A Router queues routing requests of a module and resolves them once the
// module subtree is complete. Requests addressing the parent scope move up
// to the parent router, preserving order relative to its own requests.
type Router struct {
	mod   *Module
	queue []routeReq
}

func newRouter(m *Module) *Router { return &Router{mod: m} }

// Add queues a route from source to target.
func (r *Router) Add(target, source string) error {
	t, err := ParseRoutePath(target)
	if err != nil {
		return err
	}
	s, err := ParseRoutePath(source)
	if err != nil {
		return err
	}
	for t.Ups > 0 || s.Ups > 0 {
		p := r.mod.parent
		if p == nil {
			return routeErrf("%s: no parent scope for %s <- %s", r.mod.PathString(), t, s)
		}
		if t.Ups > 0 {
			t.Ups--
		} else {
			t.Path = r.mod.name + "/" + t.Path
		}
		if s.Ups > 0 {
			s.Ups--
		} else {
			s.Path = r.mod.name + "/" + s.Path
		}
		r = p.router
	}
	r.queue = append(r.queue, routeReq{target: t, source: s})
	return nil
}

// Flush resolves all queued requests.
func (r *Router) Flush() error {
	for len(r.queue) > 0 {
		req := r.queue[0]
		r.queue = r.queue[1:]
		if err := r.connect(req); err != nil {
			return err
		}
	}
	return nil
}

// routeRef is a resolved route endpoint: an ident of the module itself
// (inst nil) or of a direct child instance.
type routeRef struct {
	inst *Module
	id   *Ident
	expr Expr // constant endpoint, source side only
}

func (r *Router) connect(req routeReq) error {
	m := r.mod
	// the non-created side fixes the type for on-demand creation
	src, serr := r.resolve(req.source, nil)
	tgt, terr := r.resolve(req.target, refType(src))
	if terr != nil {
		return terr
	}
	if serr != nil {
		if !req.source.Create {
			return serr
		}
		if src, serr = r.resolve(req.source, refType(tgt)); serr != nil {
			return serr
		}
	}
	if tgt.id == nil {
		return routeErrf("%s: %s does not name an ident", m.PathString(), req.target)
	}
	switch {
	case tgt.inst == nil && src.inst == nil:
		return m.assigns.Set(tgt.id, src.asExpr())
	case tgt.inst != nil && src.inst == nil:
		return m.instcons[tgt.inst.name].Set(tgt.id, src.asExpr())
	case tgt.inst == nil && src.inst != nil:
		if src.id == nil {
			return routeErrf("%s: %s does not name an ident", m.PathString(), req.source)
		}
		return m.instcons[src.inst.name].Set(src.id, tgt.id)
	}
	// instance to instance: wire through a local signal named after the
	// source port
	base, _ := SplitSuffix(src.id.Name())
	wname := base + "_s"
	wire, err := m.namespace.Get(wname)
	if err != nil {
		wire = m.AddSignal(src.id.Type(), wname)
	}
	if err := m.instcons[src.inst.name].Set(src.id, wire); err != nil {
		return err
	}
	return m.instcons[tgt.inst.name].Set(tgt.id, wire)
}

func refType(ref routeRef) Type {
	if ref.id != nil {
		return ref.id.Type()
	}
	return nil
}

func (ref routeRef) asExpr() Expr {
	if ref.id != nil {
		return ref.id
	}
	return ref.expr
}

// resolve maps a route path to an endpoint of this module or one of its
// direct instances, creating the ident when the path asks for it. An
// existing ident of matching type satisfies a create request.
func (r *Router) resolve(rp RoutePath, want Type) (routeRef, error) {
	m := r.mod
	segs := rp.segs()
	switch len(segs) {
	case 1:
		id, err := m.namespace.Get(segs[0])
		if err == nil {
			return routeRef{id: id}, nil
		}
		if !rp.Create {
			// a source path may be a constant expression
			if e, perr := ParseConst(segs[0]); perr == nil {
				return routeRef{expr: e}, nil
			}
			return routeRef{}, err
		}
		id, cerr := m.createRouted(segs[0], want)
		if cerr != nil {
			return routeRef{}, cerr
		}
		return routeRef{id: id}, nil
	case 2:
		inst, err := m.Inst(segs[0])
		if err != nil {
			return routeRef{}, err
		}
		id, err := inst.namespace.Get(segs[1])
		if err == nil {
			return routeRef{inst: inst, id: id}, nil
		}
		if !rp.Create {
			return routeRef{}, routeErrf("%s: %s: %v", m.PathString(), rp, err)
		}
		id, cerr := inst.createRouted(segs[1], want)
		if cerr != nil {
			return routeRef{}, cerr
		}
		return routeRef{inst: inst, id: id}, nil
	}
	return routeRef{}, routeErrf("%s: route path %s crosses more than one hierarchy level", m.PathString(), rp)
}

// createRouted creates a signal or port named name on m, for use as a route
// endpoint. The role follows the name suffix.
func (m *Module) createRouted(name string, typ Type) (*Ident, error) {
	if m.locked {
		return nil, lockErrf("%s: is locked, cannot create %q", m.PathString(), name)
	}
	if typ == nil {
		return nil, routeErrf("%s: cannot infer type of %q", m.PathString(), name)
	}
	if dir, ok := DirectionFromName(name); ok {
		id := newIdent(PortIdent, typ, name, dir, Doc{}, nil)
		if err := m.namespace.Add(id); err != nil {
			return nil, err
		}
		return id, nil
	}
	id := newIdent(SignalIdent, typ, name, FWD, Doc{}, nil)
	if err := m.namespace.Add(id); err != nil {
		return nil, err
	}
	return id, nil
}
