// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"sort"
	"strings"
)

// ModFlag alters the build behavior of a module spec.
type ModFlag uint8

const (
	// ModDependency runs the BuildDep hook between build and routing.
	ModDependency ModFlag = 1 << iota
	// ModConfigurable selects one of the spec configs at instantiation.
	ModConfigurable
	// ModTestbench marks a testbench wrapping a device under test.
	ModTestbench
	// ModCore marks a helper module owned and populated by its parent. Core
	// modules have no build hooks and stay open until the parent locks.
	ModCore
)

// A ModSpec is the blueprint of a module: name, documentation, configs and
// build hooks. Specs are stateless; every instantiation elaborates a fresh
// Module from them.
type ModSpec struct {
	Name    string
	Lib     string
	Flags   ModFlag
	Title   string
	Descr   string
	Comment string

	// Configs are the selectable variants of a configurable spec,
	// DefaultConfig names the one used when the instantiation does not
	// choose.
	Configs       []*Config
	DefaultConfig string

	// Build populates the module. BuildDUT runs before Build on testbench
	// specs so the device under test exists first, BuildDep after Build on
	// dependency specs, BuildPost after routing has been resolved.
	Build     func(*Module)
	BuildDUT  func(*Module)
	BuildDep  func(*Module)
	BuildPost func(*Module)
}

// A Module is one elaborated instance of a spec: its namespace of ports,
// signals, parameters and constants, its submodule instances and its
// assignment, routing and register state. A module locks once elaboration of
// its subtree finished; every mutation afterwards fails.
//
// Mutating methods panic with engine errors; NewTop converts them into plain
// error returns at the tree root.
type Module struct {
	spec    *ModSpec
	name    string
	parent  *Module
	config  *Config
	dutSpec *ModSpec

	namespace *Idents
	paramvals map[string]Expr
	rawparams map[string]string
	insts     []*Module
	instmap   map[string]*Module
	drivers   *Drivers
	assigns   *Assigns
	instcons  map[string]*Assigns
	flipflops []*FlipFlop
	ffmap     map[string]*FlipFlop
	muxes     []*Mux
	muxmap    map[string]*Mux
	router    *Router
	locked    bool
}

// ModOpt configures module instantiation.
type ModOpt func(*modCfg)

type modCfg struct {
	config string
	dut    *ModSpec
	params map[string]string
}

// WithConfig selects the named config of a configurable spec.
func WithConfig(name string) ModOpt {
	return func(c *modCfg) { c.config = name }
}

// WithDUT hands a device-under-test spec to a testbench module.
func WithDUT(spec *ModSpec) ModOpt {
	return func(c *modCfg) { c.dut = spec }
}

// WithParams overrides parameters of the instantiated module. Values are
// constant expression text checked against the declared parameter types.
func WithParams(values map[string]string) ModOpt {
	return func(c *modCfg) { c.params = values }
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// pathErr prefixes err with the hierarchical module path.
func pathErr(path string, err error) error {
	switch e := err.(type) {
	case *LockError:
		return &LockError{Msg: path + ": " + e.Msg}
	case *DuplicateError:
		return &DuplicateError{Msg: path + ": " + e.Msg}
	case *UnknownNameError:
		return &UnknownNameError{Name: e.Name, Msg: path + ": " + e.Msg}
	case *DirectionError:
		return &DirectionError{Msg: path + ": " + e.Msg}
	case *MultiDriverError:
		return &MultiDriverError{Msg: path + ": " + e.Msg}
	case *TypeError:
		return &TypeError{Msg: path + ": " + e.Msg}
	case *RouteError:
		return &RouteError{Msg: path + ": " + e.Msg}
	}
	return err
}

func (m *Module) check(err error) {
	if err != nil {
		panic(pathErr(m.PathString(), err))
	}
}

func newModule(spec *ModSpec, parent *Module, name string, cfg modCfg) *Module {
	if spec.Name == "" {
		panic(typeErrf("module spec without name"))
	}
	if err := ValidateIdentifier(spec.Name); err != nil {
		panic(err)
	}
	m := &Module{
		spec:      spec,
		parent:    parent,
		name:      name,
		dutSpec:   cfg.dut,
		namespace: NewIdents(),
		paramvals: make(map[string]Expr),
		rawparams: cfg.params,
		instmap:   make(map[string]*Module),
		drivers:   NewDrivers(),
		instcons:  make(map[string]*Assigns),
		ffmap:     make(map[string]*FlipFlop),
		muxmap:    make(map[string]*Mux),
	}
	m.assigns = NewAssigns(m.namespace, m.namespace, m.drivers)
	m.router = newRouter(m)
	if spec.Flags&ModConfigurable != 0 {
		name := cfg.config
		if name == "" {
			name = spec.DefaultConfig
		}
		c, err := spec.configByName(name)
		m.check(err)
		m.config = c
	}
	if m.name == "" {
		m.name = m.ModName()
	}
	return m
}

func (s *ModSpec) configByName(name string) (*Config, error) {
	var known []string
	for _, c := range s.Configs {
		if c.Name == name {
			return c, nil
		}
		known = append(known, c.Name)
	}
	return nil, unknownNameErr(name, known)
}

// New elaborates spec as tree root. It panics with an engine error on any
// violation; NewTop is the recovering variant. A core spec stays open for
// later population and is not elaborated.
func New(spec *ModSpec, opts ...ModOpt) *Module {
	var cfg modCfg
	for _, o := range opts {
		o(&cfg)
	}
	m := newModule(spec, nil, "", cfg)
	if spec.Flags&ModCore == 0 {
		m.elaborate()
	}
	return m
}

// NewTop elaborates spec as tree root, converting engine errors into an
// error return.
func NewTop(spec *ModSpec, opts ...ModOpt) (m *Module, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(engineError); ok {
			m, err = nil, e
			return
		}
		panic(r)
	}()
	return New(spec, opts...), nil
}

// NewCore returns an open, parentless core module, mostly useful in tests.
func NewCore(name string) *Module {
	return New(&ModSpec{Name: name, Flags: ModCore})
}

// elaborate runs the build lifecycle: build hooks, dependency hook, route
// resolution, post hook, lock.
func (m *Module) elaborate() {
	if m.spec.Flags&ModTestbench != 0 && m.spec.BuildDUT != nil {
		m.spec.BuildDUT(m)
	}
	if m.spec.Build != nil {
		m.spec.Build(m)
	}
	if m.spec.Flags&ModDependency != 0 && m.spec.BuildDep != nil {
		m.spec.BuildDep(m)
	}
	m.check(m.router.Flush())
	if m.spec.BuildPost != nil {
		m.spec.BuildPost(m)
	}
	m.applyParams()
	m.lock()
}

// applyParams resolves the instantiation parameter overrides against the
// declared parameters.
func (m *Module) applyParams() {
	if len(m.rawparams) == 0 {
		return
	}
	names := make([]string, 0, len(m.rawparams))
	for n := range m.rawparams {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		id, err := m.namespace.Get(n)
		m.check(err)
		if id.Kind() != ParamIdent {
			m.check(typeErrf("%s %q is not a parameter", id.Kind(), n))
		}
		e, err := ParseConst(m.rawparams[n])
		m.check(err)
		if !widthCompatible(id.Type(), e.ExprType()) {
			m.check(typeErrf("parameter %q (%s) cannot take %s", n, id.Type(), e))
		}
		m.paramvals[n] = e
	}
	m.rawparams = nil
}

// lock resolves leftover routes, locks open core children and seals the
// module.
func (m *Module) lock() {
	if m.locked {
		return
	}
	m.check(m.router.Flush())
	for _, c := range m.insts {
		if c.spec.Flags&ModCore != 0 && !c.locked {
			c.check(c.router.Flush())
			c.applyParams()
			c.namespace.Lock()
			c.locked = true
		}
	}
	m.namespace.Lock()
	m.locked = true
}

func (m *Module) mustOpen(what string) {
	if m.locked {
		panic(pathErr(m.PathString(), lockErrf("is locked, cannot %s", what)))
	}
}

// Spec returns the spec this module was elaborated from.
func (m *Module) Spec() *ModSpec { return m.spec }

// Name returns the instance name, or the module name for a tree root.
func (m *Module) Name() string { return m.name }

// Parent returns the parent module, nil for a tree root.
func (m *Module) Parent() *Module { return m.parent }

// Config returns the selected config, nil on non-configurable modules.
func (m *Module) Config() *Config { return m.config }

// IsLocked reports whether elaboration of this module finished.
func (m *Module) IsLocked() bool { return m.locked }

// DUT returns the device-under-test spec handed to a testbench.
func (m *Module) DUT() *ModSpec { return m.dutSpec }

// ModName returns the module type name. Core modules prefix the parent's
// name, testbenches append the name of their device under test and
// configurable modules append the config name.
func (m *Module) ModName() string {
	name := m.spec.Name
	if m.spec.Flags&ModCore != 0 && m.parent != nil {
		name = m.parent.ModName() + "_" + name
	}
	if m.spec.Flags&ModTestbench != 0 && m.dutSpec != nil {
		name += "_" + m.dutSpec.Name
	}
	if m.config != nil && m.config.Name != "" && m.config.Name != m.spec.Name {
		name += "_" + m.config.Name
	}
	return name
}

// Path returns the instance names from the tree root down to this module.
func (m *Module) Path() []string {
	if m.parent == nil {
		return []string{m.name}
	}
	return append(m.parent.Path(), m.name)
}

// PathString returns the path joined with "/".
func (m *Module) PathString() string {
	return strings.Join(m.Path(), "/")
}

// HierName returns the hierarchical instance name: the top module name
// followed by the instance names with their "u_" prefix stripped.
func (m *Module) HierName() string {
	if m.parent == nil {
		return m.ModName()
	}
	return m.parent.HierName() + "_" + stripInstPrefix(m.name)
}

// IdentOpt configures ident creation.
type IdentOpt func(*identCfg)

type identCfg struct {
	doc   Doc
	value Expr
	route string
}

// WithDoc attaches documentation.
func WithDoc(doc Doc) IdentOpt {
	return func(c *identCfg) { c.doc = doc }
}

// WithRoute queues a route from the declared ident to the given path,
// resolved once the module subtree is complete.
func WithRoute(path string) IdentOpt {
	return func(c *identCfg) { c.route = path }
}

// WithValue attaches a constant value to a parameter or constant.
func WithValue(v Expr) IdentOpt {
	return func(c *identCfg) { c.value = v }
}

func applyIdentOpts(opts []IdentOpt) identCfg {
	var c identCfg
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (m *Module) addIdent(kind IdentKind, typ Type, name string, dir Orient, c identCfg) *Ident {
	m.mustOpen("add " + strings.ToLower(kind.String()) + " " + name)
	id := newIdent(kind, typ, name, dir, c.doc, c.value)
	m.check(m.namespace.Add(id))
	if c.route != "" {
		m.check(m.router.Add(c.route, id.Name()))
	}
	return id
}

// AddPort adds a port. Its direction follows the name suffix, defaulting to
// input; an empty name is allowed for bundle types whose leaves carry the
// full names.
func (m *Module) AddPort(typ Type, name string, opts ...IdentOpt) *Ident {
	dir := IN
	if d, ok := DirectionFromName(name); ok {
		dir = d
	}
	return m.addIdent(PortIdent, typ, name, dir, applyIdentOpts(opts))
}

// AddSignal adds an internal signal.
func (m *Module) AddSignal(typ Type, name string, opts ...IdentOpt) *Ident {
	return m.addIdent(SignalIdent, typ, name, FWD, applyIdentOpts(opts))
}

// AddParam adds a parameter.
func (m *Module) AddParam(typ Type, name string, opts ...IdentOpt) *Ident {
	return m.addIdent(ParamIdent, typ, name, FWD, applyIdentOpts(opts))
}

// AddConst adds an elaboration-time constant.
func (m *Module) AddConst(typ Type, name string, opts ...IdentOpt) *Ident {
	return m.addIdent(ConstIdent, typ, name, FWD, applyIdentOpts(opts))
}

// AddIdent registers an already-built ident, used to mirror parameters and
// constants into core shells.
func (m *Module) AddIdent(id *Ident) *Ident {
	m.mustOpen("add " + strings.ToLower(id.Kind().String()) + " " + id.Name())
	m.check(m.namespace.Add(id))
	return id
}

// AddPortOrSignal adds a port when the name carries a direction suffix and a
// signal otherwise.
func (m *Module) AddPortOrSignal(typ Type, name string, opts ...IdentOpt) *Ident {
	if _, ok := DirectionFromName(name); ok {
		return m.AddPort(typ, name, opts...)
	}
	return m.AddSignal(typ, name, opts...)
}

// AddTypeConsts adds a constant bundle describing the layout of typ. The
// name defaults to the snake-case type name.
func (m *Module) AddTypeConsts(typ Type, name ...string) *Ident {
	nm := ""
	if len(name) > 0 {
		nm = name[0]
	}
	if nm == "" {
		nm = typeConstName(typ)
	}
	return m.addIdent(ConstIdent, DescriptiveStructType(typ), nm, FWD, identCfg{})
}

func typeConstName(typ Type) string {
	name := typ.String()
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "Type")
	return toSnakeCase(name)
}

// Get resolves an ident by name, including flattened sub-idents.
func (m *Module) Get(name string) *Ident {
	id, err := m.namespace.Get(name)
	m.check(err)
	return id
}

// Namespace returns the module namespace.
func (m *Module) Namespace() *Idents { return m.namespace }

// Ports returns the top-level ports in declaration order.
func (m *Module) Ports() []*Ident { return m.topIdents(PortIdent) }

// Signals returns the top-level signals in declaration order.
func (m *Module) Signals() []*Ident { return m.topIdents(SignalIdent) }

// PortsSignals returns the top-level ports and signals in declaration order.
func (m *Module) PortsSignals() []*Ident {
	var out []*Ident
	for _, n := range m.namespace.Names() {
		id, _ := m.namespace.GetTop(n)
		if id.Kind() == PortIdent || id.Kind() == SignalIdent {
			out = append(out, id)
		}
	}
	return out
}

// Params returns the parameters in declaration order.
func (m *Module) Params() []*Ident { return m.topIdents(ParamIdent) }

// Consts returns the constants in declaration order.
func (m *Module) Consts() []*Ident { return m.topIdents(ConstIdent) }

func (m *Module) topIdents(kind IdentKind) []*Ident {
	var out []*Ident
	for _, n := range m.namespace.Names() {
		id, _ := m.namespace.GetTop(n)
		if id.Kind() == kind {
			out = append(out, id)
		}
	}
	return out
}

// ParamValue returns the instantiation override for the named parameter,
// nil if the declared default applies.
func (m *Module) ParamValue(name string) Expr { return m.paramvals[name] }

// Parse parses expression text against the module namespace.
func (m *Module) Parse(text string) Expr {
	e, err := Parse(text, func(name string) (Expr, error) {
		return m.namespace.Get(name)
	})
	m.check(err)
	return e
}

// Add elaborates spec as a child instance named name. Non-core children run
// their full build lifecycle immediately and come back locked; core children
// stay open for population by this module.
func (m *Module) Add(spec *ModSpec, name string, opts ...ModOpt) *Module {
	m.mustOpen("add instance " + name)
	if err := ValidateIdentifier(name); err != nil {
		m.check(err)
	}
	if _, ok := m.instmap[name]; ok {
		m.check(duplicateErrf("instance %q already exists", name))
	}
	var cfg modCfg
	for _, o := range opts {
		o(&cfg)
	}
	child := newModule(spec, m, name, cfg)
	m.insts = append(m.insts, child)
	m.instmap[name] = child
	m.instcons[name] = NewInstAssigns(name, child.namespace, m.namespace, m.drivers)
	if spec.Flags&ModCore == 0 {
		child.elaborate()
	}
	return child
}

// AddDUT instantiates the device-under-test spec handed to the testbench.
func (m *Module) AddDUT(name string, opts ...ModOpt) *Module {
	if m.dutSpec == nil {
		m.check(routeErrf("no device-under-test spec"))
	}
	return m.Add(m.dutSpec, name, opts...)
}

// Inst returns the child instance addressed by name, which may be an
// "a/b" style path across several levels.
func (m *Module) Inst(name string) (*Module, error) {
	cur := m
	for _, seg := range strings.Split(name, "/") {
		c, ok := cur.instmap[seg]
		if !ok {
			var known []string
			for _, i := range cur.insts {
				known = append(known, i.name)
			}
			return nil, pathErr(cur.PathString(), unknownNameErr(seg, known))
		}
		cur = c
	}
	return cur, nil
}

// GetInst returns the child instance named name, panicking when unknown.
func (m *Module) GetInst(name string) *Module {
	c, err := m.Inst(name)
	must(err)
	return c
}

// Insts returns the child instances in creation order.
func (m *Module) Insts() []*Module {
	return append([]*Module(nil), m.insts...)
}

// Assign drives target with the source expression.
func (m *Module) Assign(target, source string) {
	m.mustOpen("assign " + target)
	m.check(m.assigns.Set(m.Get(target), m.Parse(source)))
}

// AssignDefault drives target with an overridable default. A second default
// on the same bits errors.
func (m *Module) AssignDefault(target, source string) {
	m.mustOpen("assign " + target)
	m.check(m.assigns.SetDefault(m.Get(target), m.Parse(source)))
}

// OverwriteDefault drives target with a default, replacing an existing one.
func (m *Module) OverwriteDefault(target, source string) {
	m.mustOpen("assign " + target)
	m.check(m.assigns.OverwriteDefault(m.Get(target), m.Parse(source)))
}

// AssignSlice drives a bit range of target.
func (m *Module) AssignSlice(target string, sl Slice, source string) {
	m.mustOpen("assign " + target)
	m.check(m.assigns.SetSlice(m.Get(target), sl, m.Parse(source)))
}

// Assigns returns the module assignment ledger.
func (m *Module) Assigns() *Assigns { return m.assigns }

// Drivers returns the single-driver ledger shared by all assignment
// surfaces of this module.
func (m *Module) Drivers() *Drivers { return m.drivers }

// Con connects a port (or core signal) of the child instance inst to a
// source expression of this module.
func (m *Module) Con(inst, port, source string) {
	m.mustOpen("connect " + inst + "/" + port)
	child := m.GetInst(inst)
	id, err := child.namespace.Get(port)
	m.check(err)
	m.check(m.instcons[inst].Set(id, m.Parse(source)))
}

// InstCon returns the connection ledger of the child instance named name.
func (m *Module) InstCon(name string) *Assigns {
	m.GetInst(name)
	return m.instcons[name]
}

// Route queues a route from source to target, resolved once the subtree is
// complete.
func (m *Module) Route(target, source string) {
	m.mustOpen("route " + target)
	m.check(m.router.Add(target, source))
}

// Router returns the route resolver of this module.
func (m *Module) Router() *Router { return m.router }
