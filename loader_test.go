// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbiotcloud/ucdp"
)

func testRegistry(t *testing.T) *ucdp.Registry {
	t.Helper()
	r := ucdp.NewRegistry()
	sub := &ucdp.ModSpec{
		Name: "sub",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
		},
	}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			m.Add(sub, "u_sub")
			m.Route("u_sub/data_i", "data_i")
		},
	}
	tb := &ucdp.ModSpec{
		Name:  "tb",
		Flags: ucdp.ModTestbench,
		Build: func(m *ucdp.Module) {
			m.AddSignal(ucdp.UintType(8), "data_i")
			m.AddDUT("u_dut")
		},
	}
	require.NoError(t, r.Register(sub))
	require.NoError(t, r.Register(top))
	require.NoError(t, r.Register(tb))
	return r
}

func TestRegistryRegister(t *testing.T) {
	ucdp.ResetInterner()
	r := testRegistry(t)
	assert.Equal(t, []string{"sub", "top", "tb"}, r.Names())
	err := r.Register(&ucdp.ModSpec{Name: "top"})
	require.Error(t, err)
	assert.IsType(t, &ucdp.DuplicateError{}, err)
}

func TestLoadTop(t *testing.T) {
	ucdp.ResetInterner()
	r := testRegistry(t)
	m, err := r.Load("top")
	require.NoError(t, err)
	assert.Equal(t, "top", m.ModName())
	assert.True(t, m.IsLocked())
}

func TestLoadSub(t *testing.T) {
	ucdp.ResetInterner()
	r := testRegistry(t)
	m, err := r.Load("top-sub")
	require.NoError(t, err)
	assert.Equal(t, "sub", m.Spec().Name)
	assert.Equal(t, "top/u_sub", m.PathString())
}

func TestLoadTestbench(t *testing.T) {
	ucdp.ResetInterner()
	r := testRegistry(t)
	m, err := r.Load("tb#top")
	require.NoError(t, err)
	// the testbench name carries the device under test
	assert.Equal(t, "tb_top", m.ModName())
	dut := m.GetInst("u_dut")
	assert.Equal(t, "top", dut.ModName())
	// the testbench signal feeds the dut input by name
	got := map[string]string{}
	for _, as := range m.InstCon("u_dut").Iter() {
		got[as.Target.Name()] = as.Source.String()
	}
	assert.Equal(t, "data_i", got["data_i"])
}

func TestLoadErrors(t *testing.T) {
	ucdp.ResetInterner()
	r := testRegistry(t)
	_, err := r.Load("nonsense")
	require.Error(t, err)
	assert.IsType(t, &ucdp.UnknownNameError{}, err)

	_, err = r.Load("top-nothing")
	require.Error(t, err)

	// only testbench specs qualify before the hash
	_, err = r.Load("sub#top")
	require.Error(t, err)
	assert.IsType(t, &ucdp.TypeError{}, err)
}

func TestStats(t *testing.T) {
	ucdp.ResetInterner()
	leaf := &ucdp.ModSpec{Name: "leaf"}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.Add(leaf, "u_a")
			m.Add(leaf, "u_b")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	st := m.Stats()
	assert.Equal(t, 3, st.Insts)
	assert.Equal(t, 2, st.Mods)
}

func TestModIter(t *testing.T) {
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
			m.Add(leaf, "u_tail")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)

	names := func(mods []*ucdp.Module) []string {
		out := make([]string, len(mods))
		for i, mm := range mods {
			out[i] = mm.Name()
		}
		return out
	}
	assert.Equal(t, []string{"top", "u_mid", "u_leaf", "u_tail"}, names(ucdp.ModPreIter(m)))
	assert.Equal(t, []string{"u_leaf", "u_mid", "u_tail", "top"}, names(ucdp.ModPostIter(m)))
	assert.Equal(t, []string{"top", "u_mid", "u_tail"}, names(ucdp.ModPreIter(m, ucdp.ModMaxLevel(1))))
	assert.Equal(t, []string{"top", "u_mid", "u_leaf"}, names(ucdp.ModPreIter(m, ucdp.Unique())))
	assert.Equal(t, []string{"u_mid", "u_leaf"}, names(ucdp.ModPreIter(m, ucdp.ModFilter(func(mm *ucdp.Module) bool {
		return mm.Parent() != nil && mm.Spec().Name != "leaf" || mm.Name() == "u_leaf"
	}))))
}

func TestOverview(t *testing.T) {
	ucdp.ResetInterner()
	leaf := &ucdp.ModSpec{Name: "leaf"}
	top := &ucdp.ModSpec{
		Name: "top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.UintType(8), "data_i")
			m.Add(leaf, "u_a")
			m.Add(leaf, "u_b")
		},
	}
	m, err := ucdp.NewTop(top)
	require.NoError(t, err)
	out := ucdp.Overview(m)
	assert.Contains(t, out, "top")
	assert.Contains(t, out, "u_a")
	assert.Contains(t, out, "u_b")
	assert.True(t, strings.HasSuffix(out, "3 instances of 2 modules\n"), out)
}

func TestLoadConfigs(t *testing.T) {
	ucdp.ResetInterner()
	text := `
- name: small
  title: Small Variant
  values:
    depth: "4"
    width: 8'd16
- name: large
  values:
    depth: "64"
`
	configs, err := ucdp.LoadConfigs(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "small", configs[0].Name)
	assert.Equal(t, int64(16), configs[0].MustInt("width"))
	assert.Equal(t, int64(64), configs[1].MustInt("depth"))

	_, err = configs[0].Int("unknown")
	require.Error(t, err)
	assert.IsType(t, &ucdp.UnknownNameError{}, err)
}

func TestLoadConfigsRejectsBadValues(t *testing.T) {
	ucdp.ResetInterner()
	_, err := ucdp.LoadConfigs(strings.NewReader(`
- name: broken
  values:
    depth: "1 +"
`))
	require.Error(t, err)

	_, err = ucdp.LoadConfigs(strings.NewReader(`
- name: dup
- name: dup
`))
	require.Error(t, err)
}
