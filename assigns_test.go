// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbiotcloud/ucdp"
)

func newTestAssigns(t *testing.T, ids ...*ucdp.Ident) *ucdp.Assigns {
	t.Helper()
	ns := ucdp.NewIdents()
	for _, id := range ids {
		require.NoError(t, ns.Add(id))
	}
	return ucdp.NewAssigns(ns, ns, ucdp.NewDrivers())
}

func TestAssignScalar(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	in := ucdp.NewPort(ucdp.UintType(8), "data_i", ucdp.IN)
	a := newTestAssigns(t, out, in)
	require.NoError(t, a.Set(out, in))
	asgns := a.Iter()
	require.Len(t, asgns, 1)
	assert.Same(t, out, asgns[0].Target)
	assert.Equal(t, "data_i", asgns[0].Source.String())
}

func TestAssignDirection(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	in := ucdp.NewPort(ucdp.UintType(8), "data_i", ucdp.IN)
	a := newTestAssigns(t, out, in)
	err := a.Set(in, out)
	require.Error(t, err)
	assert.IsType(t, &ucdp.DirectionError{}, err)
	assert.Contains(t, err.Error(), `"data_i"`)
}

func TestAssignWidthMismatch(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	in := ucdp.NewPort(ucdp.UintType(4), "nibble_i", ucdp.IN)
	a := newTestAssigns(t, out, in)
	err := a.Set(out, in)
	require.Error(t, err)
	assert.IsType(t, &ucdp.TypeError{}, err)
}

func TestAssignIntegerAdapts(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	a := newTestAssigns(t, out)
	require.NoError(t, a.Set(out, ucdp.ConstInt(5)))
}

func TestAssignOverlapFails(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	lo := ucdp.NewPort(ucdp.UintType(4), "lo_i", ucdp.IN)
	hi := ucdp.NewPort(ucdp.UintType(4), "hi_i", ucdp.IN)
	a := newTestAssigns(t, out, lo, hi)
	require.NoError(t, a.SetSlice(out, ucdp.SliceOf(3, 0), lo))
	require.NoError(t, a.SetSlice(out, ucdp.SliceOf(7, 4), hi))

	err := a.SetSlice(out, ucdp.SliceOf(5, 2), lo)
	require.Error(t, err)
	assert.IsType(t, &ucdp.MultiDriverError{}, err)
	assert.Contains(t, err.Error(), `"lo_i"`)
	assert.Contains(t, err.Error(), `"data_o"`)
}

func TestAssignDefaultOverridable(t *testing.T) {
	ucdp.ResetInterner()
	out := ucdp.NewPort(ucdp.UintType(8), "data_o", ucdp.OUT)
	in := ucdp.NewPort(ucdp.UintType(8), "data_i", ucdp.IN)
	a := newTestAssigns(t, out, in)
	require.NoError(t, a.SetDefault(out, ucdp.ConstInt(0)))
	require.NoError(t, a.Set(out, in))
	asgns := a.Iter()
	require.Len(t, asgns, 1)
	assert.Equal(t, "data_i", asgns[0].Source.String())

	// a second default on the same range conflicts
	err := a.SetDefault(out, ucdp.ConstInt(1))
	require.Error(t, err)
	assert.IsType(t, &ucdp.MultiDriverError{}, err)
}

func TestAssignCompositeSwapsBackwardLeaves(t *testing.T) {
	ucdp.ResetInterner()
	rx := ucdp.NewPort(newHandshakeType(), "rx_i", ucdp.IN)
	tx := ucdp.NewPort(newHandshakeType(), "tx_o", ucdp.OUT)
	a := newTestAssigns(t, rx, tx)
	require.NoError(t, a.Set(tx, rx))
	got := map[string]string{}
	for _, as := range a.Iter() {
		got[as.Target.Name()] = as.Source.String()
	}
	assert.Equal(t, map[string]string{
		"tx_data_o":   "rx_data_i",
		"tx_valid_o":  "rx_valid_i",
		"rx_accept_o": "tx_accept_i",
	}, got)
}

func TestAssignCompositeShapeMismatch(t *testing.T) {
	ucdp.ResetInterner()
	tx := ucdp.NewPort(newHandshakeType(), "tx_o", ucdp.OUT)
	sig := ucdp.NewSignal(ucdp.UintType(10), "blob_s")
	a := newTestAssigns(t, tx, sig)
	err := a.Set(tx, sig)
	require.Error(t, err)
	assert.IsType(t, &ucdp.TypeError{}, err)
}

func TestAssignIterOrderFollowsTargets(t *testing.T) {
	ucdp.ResetInterner()
	b := ucdp.NewPort(ucdp.UintType(8), "b_o", ucdp.OUT)
	c := ucdp.NewPort(ucdp.UintType(8), "c_o", ucdp.OUT)
	a := newTestAssigns(t, b, c)
	// assign in reverse declaration order
	require.NoError(t, a.Set(c, ucdp.ConstInt(2)))
	require.NoError(t, a.Set(b, ucdp.ConstInt(1)))
	asgns := a.Iter()
	require.Len(t, asgns, 2)
	assert.Equal(t, "b_o", asgns[0].Target.Name())
	assert.Equal(t, "c_o", asgns[1].Target.Name())
}
