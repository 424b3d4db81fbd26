// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbiotcloud/ucdp"
)

func TestParseRoutePath(t *testing.T) {
	for _, tc := range []struct {
		text string
		want ucdp.RoutePath
	}{
		{"sig_s", ucdp.RoutePath{Path: "sig_s"}},
		{"u_sub/port_i", ucdp.RoutePath{Path: "u_sub/port_i"}},
		{"../sig_s", ucdp.RoutePath{Path: "sig_s", Ups: 1}},
		{"../../sig_s", ucdp.RoutePath{Path: "sig_s", Ups: 2}},
		{"create(u_sub/sig_s)", ucdp.RoutePath{Path: "u_sub/sig_s", Create: true}},
		{"create(../sig_s)", ucdp.RoutePath{Path: "sig_s", Create: true, Ups: 1}},
	} {
		rp, err := ucdp.ParseRoutePath(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, rp, tc.text)
		assert.Equal(t, tc.text, rp.String(), tc.text)
	}
	_, err := ucdp.ParseRoutePath("create(")
	assert.Error(t, err)
	_, err = ucdp.ParseRoutePath("")
	assert.Error(t, err)
}

func pipelineSpec() (*ucdp.ModSpec, *ucdp.ModSpec) {
	stage := &ucdp.ModSpec{
		Name: "stage",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.ClkRstAnType(), "")
			m.AddPort(ucdp.UintType(8), "data_i")
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Assign("data_o", "data_i")
		},
	}
	top := &ucdp.ModSpec{
		Name: "pipe",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.ClkRstAnType(), "")
			m.AddPort(ucdp.UintType(8), "data_i")
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Add(stage, "u_first")
			m.Add(stage, "u_second")
			m.Route("u_first/data_i", "data_i")
			m.Route("u_second/data_i", "u_first/data_o")
			m.Route("data_o", "u_second/data_o")
		},
	}
	return top, stage
}

func TestRouteThroughHierarchy(t *testing.T) {
	ucdp.ResetInterner()
	top, _ := pipelineSpec()
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)

	// port to port routing wires through a generated signal
	wire := m.Get("data_s")
	assert.Equal(t, ucdp.SignalIdent, wire.Kind())

	first := m.InstCon("u_first")
	got := map[string]string{}
	for _, as := range first.Iter() {
		got[as.Target.Name()] = as.Source.String()
	}
	assert.Equal(t, "data_i", got["data_i"])
	// clk and reset leaves connect by name without explicit routes
	assert.Equal(t, "clk_i", got["clk_i"])
	assert.Equal(t, "rst_an_i", got["rst_an_i"])
}

func TestRouteSingleDriver(t *testing.T) {
	ucdp.ResetInterner()
	// clock, reset and an 8 bit in/out pair: every leaf driven exactly once
	top, _ := pipelineSpec()
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	assert.True(t, m.Drivers().Driven("data_o"))

	// a second driver for an already routed target fails
	bad := &ucdp.ModSpec{
		Name: "bad",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Route("data_o", "data_i")
			m.Assign("data_o", "8'd0")
		},
	}
	_, err = ucdp.NewTop(bad)
	require.Error(t, err)
	assert.IsType(t, &ucdp.MultiDriverError{}, err)
}

func TestDeclarationRoute(t *testing.T) {
	ucdp.ResetInterner()
	sub := &ucdp.ModSpec{
		Name: "sub",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
		},
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			// the route rides on the declaration and resolves after build
			m.AddSignal(ucdp.UintType(8), "feed_s", ucdp.WithRoute("u_sub/data_i"))
			m.Add(sub, "u_sub")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	got := map[string]string{}
	for _, as := range m.InstCon("u_sub").Iter() {
		got[as.Target.Name()] = as.Source.String()
	}
	assert.Equal(t, "feed_s", got["data_i"])
}

func TestRouteToParent(t *testing.T) {
	ucdp.ResetInterner()
	sub := &ucdp.ModSpec{
		Name: "sub",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Route("../data_o", "data_o")
		},
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Add(sub, "u_sub")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	asgns := m.InstCon("u_sub").Iter()
	require.Len(t, asgns, 1)
	// the child output drives the parent port
	assert.Equal(t, "data_o", asgns[0].Target.Name())
	assert.Equal(t, "data_o", asgns[0].Source.String())
}

func TestRouteCreateLocalSignal(t *testing.T) {
	ucdp.ResetInterner()
	sub := &ucdp.ModSpec{
		Name: "sub",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_o")
		},
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.Add(sub, "u_sub")
			m.Route("create(tap_s)", "u_sub/data_o")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	tap := m.Get("tap_s")
	assert.Equal(t, ucdp.SignalIdent, tap.Kind())
	assert.Equal(t, ucdp.UintType(8), tap.Type())
}

func TestRouteCreateIntoCoreChild(t *testing.T) {
	ucdp.ResetInterner()
	core := &ucdp.ModSpec{Name: "core", Flags: ucdp.ModCore}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			// the route is queued before the core child exists
			m.Route("create(u_core/data_i)", "data_i")
			m.Add(core, "u_core")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	c := m.GetInst("u_core")
	assert.True(t, c.IsLocked())
	id, err := c.Namespace().Get("data_i")
	require.NoError(t, err)
	assert.Equal(t, ucdp.PortIdent, id.Kind())
	assert.Equal(t, ucdp.IN, id.Dir())
}

func TestRouteCreateReusesExisting(t *testing.T) {
	ucdp.ResetInterner()
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "a_i")
			m.AddPort(ucdp.UintType(8), "b_i")
			m.AddSignal(ucdp.UintType(8), "tmp_s")
			m.AddPort(ucdp.UintType(8), "both_o")
			m.Route("create(tmp2_s)", "a_i")
			// create of an existing ident silently reuses it
			m.Route("create(tmp_s)", "b_i")
			m.Assign("both_o", "tmp_s")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	assert.NotNil(t, m.Get("tmp2_s"))
}

func TestRouteIntoLockedChildFails(t *testing.T) {
	ucdp.ResetInterner()
	sub := &ucdp.ModSpec{Name: "sub"}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			m.Add(sub, "u_sub")
			m.Route("create(u_sub/data_i)", "data_i")
		},
	}
	_, err := ucdp.NewTop(top)
	require.Error(t, err)
	assert.IsType(t, &ucdp.LockError{}, err)
}

func TestRouteUnknownName(t *testing.T) {
	ucdp.ResetInterner()
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_o")
			m.Route("data_o", "nothing_s")
		},
	}
	_, err := ucdp.NewTop(top)
	require.Error(t, err)
	assert.IsType(t, &ucdp.UnknownNameError{}, err)
}

func TestConInstancePort(t *testing.T) {
	ucdp.ResetInterner()
	sub := &ucdp.ModSpec{
		Name: "sub",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			m.AddPort(ucdp.UintType(8), "data_o")
		},
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddSignal(ucdp.UintType(8), "in_s")
			m.AddSignal(ucdp.UintType(8), "out_s")
			m.Add(sub, "u_sub")
			m.Con("u_sub", "data_i", "in_s")
			m.Con("u_sub", "data_o", "out_s")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	got := map[string]string{}
	for _, as := range m.InstCon("u_sub").Iter() {
		got[as.Target.Name()] = as.Source.String()
	}
	// the output port drives the local signal, roles swapped
	assert.Equal(t, map[string]string{
		"data_i": "in_s",
		"out_s":  "data_o",
	}, got)
}

func TestRelPath(t *testing.T) {
	ucdp.ResetInterner()
	leaf := &ucdp.ModSpec{Name: "leaf"}
	mid := &ucdp.ModSpec{
		Name:  "mid",
		Build: func(m *ucdp.Module) { m.Add(leaf, "u_leaf") },
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.Add(mid, "u_mid")
			m.Add(leaf, "u_other")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	l := m.GetInst("u_mid").GetInst("u_leaf")
	o := m.GetInst("u_other")

	p, err := ucdp.RelPath(m, l)
	require.NoError(t, err)
	assert.Equal(t, "u_mid/u_leaf", p)

	p, err = ucdp.RelPath(l, m)
	require.NoError(t, err)
	assert.Equal(t, "../..", p)

	p, err = ucdp.RelPath(l, o)
	require.NoError(t, err)
	assert.Equal(t, "../../u_other", p)

	p, err = ucdp.RelPath(m, m)
	require.NoError(t, err)
	assert.Equal(t, ".", p)
}
