// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbiotcloud/ucdp"
)

// handshake carries payload forward and an accept flag backward.
func newHandshakeType() *ucdp.StructType {
	return ucdp.NewStructType("HandshakeType", func(b *ucdp.StructBuilder) {
		b.Add("data", ucdp.UintType(8))
		b.Add("valid", ucdp.BitType())
		b.Add("accept", ucdp.BitType(), ucdp.BWD)
	})
}

func identNames(ids []*ucdp.Ident) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name()
	}
	return names
}

func TestPortLeafNames(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(newHandshakeType(), "vec_a_i", ucdp.IN)
	assert.Equal(t, []string{"vec_a_i", "vec_a_data_i", "vec_a_valid_i", "vec_a_accept_o"},
		identNames(port.Iter()))
}

func TestPortLeafNamesFlipped(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(newHandshakeType(), "vec_a_o", ucdp.OUT)
	assert.Equal(t, []string{"vec_a_o", "vec_a_data_o", "vec_a_valid_o", "vec_a_accept_i"},
		identNames(port.Iter()))
}

func TestSignalLeafNamesDoNotFlip(t *testing.T) {
	ucdp.ResetInterner()
	sig := ucdp.NewSignal(newHandshakeType(), "vec_s")
	assert.Equal(t, []string{"vec_s", "vec_data_s", "vec_valid_s", "vec_accept_s"},
		identNames(sig.Iter()))
}

func TestEmptyPortName(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(ucdp.ClkRstAnType(), "", ucdp.IN)
	assert.Equal(t, []string{"", "clk_i", "rst_an_i"}, identNames(port.Iter()))
}

func TestPortDirectionMustMatchName(t *testing.T) {
	ucdp.ResetInterner()
	assert.Panics(t, func() { ucdp.NewPort(ucdp.BitType(), "ena_i", ucdp.OUT) })
}

func TestIdentInterned(t *testing.T) {
	ucdp.ResetInterner()
	a := ucdp.NewPort(newHandshakeType(), "vec_i", ucdp.IN)
	b := ucdp.NewPort(newHandshakeType(), "vec_i", ucdp.IN)
	assert.Same(t, a, b)
	assert.NotSame(t, a, ucdp.NewSignal(newHandshakeType(), "vec_i"))
	// repeated flattening yields identical leaf objects
	assert.Same(t, a.Iter()[1], b.Iter()[1])
}

func TestIdentGet(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(newHandshakeType(), "vec_i", ucdp.IN)
	leaf, ok := port.Get("vec_accept_o")
	require.True(t, ok)
	assert.Equal(t, ucdp.OUT, leaf.Dir())
	assert.Equal(t, ucdp.BitType(), leaf.Type())
	_, ok = port.Get("vec_nack_o")
	assert.False(t, ok)
}

func TestIdentValue(t *testing.T) {
	ucdp.ResetInterner()
	sig := ucdp.NewSignal(ucdp.UintType(8), "data_s")
	_, err := sig.Int()
	assert.Error(t, err)
}

func nestedType() *ucdp.StructType {
	inner := ucdp.NewStructType("InnerType", func(b *ucdp.StructBuilder) {
		b.Add("a", ucdp.UintType(4))
		b.Add("b", ucdp.UintType(4), ucdp.BWD)
	})
	return ucdp.NewStructType("OuterType", func(b *ucdp.StructBuilder) {
		b.Add("x", inner)
		b.Add("y", inner, ucdp.BWD)
		b.Add("mode", ucdp.BitType())
	})
}

func TestIterPreOrder(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(nestedType(), "n_i", ucdp.IN)
	assert.Equal(t, []string{
		"n_i",
		"n_x_i", "n_x_a_i", "n_x_b_o",
		"n_y_o", "n_y_a_o", "n_y_b_i",
		"n_mode_i",
	}, identNames(port.Iter()))
}

func TestIterLevels(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(nestedType(), "n_i", ucdp.IN)
	levels := []int{}
	for _, id := range port.Iter() {
		levels = append(levels, id.Level())
	}
	assert.Equal(t, []int{0, 1, 2, 2, 1, 2, 2, 1}, levels)
}

func TestIterMaxLevel(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(nestedType(), "n_i", ucdp.IN)
	assert.Equal(t, []string{"n_i", "n_x_i", "n_y_o", "n_mode_i"},
		identNames(port.Iter(ucdp.MaxLevel(1))))
	assert.Equal(t, []string{"n_i"}, identNames(port.Iter(ucdp.MaxLevel(0))))
}

func TestIterStop(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(nestedType(), "n_i", ucdp.IN)
	names := identNames(port.Iter(ucdp.WithStop(func(id *ucdp.Ident) bool {
		return id.Name() == "n_x_i"
	})))
	// the stopped ident and its whole subtree are excluded
	assert.Equal(t, []string{"n_i", "n_y_o", "n_y_a_o", "n_y_b_i", "n_mode_i"}, names)
}

func TestIterFilter(t *testing.T) {
	ucdp.ResetInterner()
	port := ucdp.NewPort(nestedType(), "n_i", ucdp.IN)
	names := identNames(port.Iter(ucdp.WithFilter(func(id *ucdp.Ident) bool {
		return id.Dir() == ucdp.OUT
	})))
	// filtering keeps descending into excluded idents
	assert.Equal(t, []string{"n_x_b_o", "n_y_o", "n_y_a_o"}, names)
}

func TestIterArrayMemberFoldsDims(t *testing.T) {
	ucdp.ResetInterner()
	st := ucdp.NewStructType("BurstType", func(b *ucdp.StructBuilder) {
		b.Add("req", ucdp.BitType())
		b.Add("data", ucdp.NewArrayType(ucdp.UintType(16), 5))
	})
	sig := ucdp.NewSignal(st, "name_s")
	nodes := sig.Iter()
	// the array member is one node carrying element type and dimension
	assert.Equal(t, []string{"name_s", "name_req_s", "name_data_s"}, identNames(nodes))
	data := nodes[2]
	assert.Equal(t, ucdp.UintType(16), data.Type())
	require.Len(t, data.Dims(), 1)
	assert.Equal(t, "0:4", data.Dims()[0].String())
}

func TestIterArrayDims(t *testing.T) {
	ucdp.ResetInterner()
	arr := ucdp.NewArrayType(ucdp.NewArrayType(ucdp.UintType(8), 3), 2)
	sig := ucdp.NewSignal(arr, "mem_s")
	leaves := sig.Leaves()
	require.Len(t, leaves, 1)
	leaf := leaves[0]
	assert.Equal(t, "mem_s", leaf.Name())
	assert.Equal(t, ucdp.UintType(8), leaf.Type())
	dims := leaf.Dims()
	require.Len(t, dims, 2)
	assert.Equal(t, "0:1", dims[0].String())
	assert.Equal(t, "0:2", dims[1].String())
}

func TestIterEnumIsLeaf(t *testing.T) {
	ucdp.ResetInterner()
	mode := ucdp.NewEnumType("ModeType", ucdp.UintType(2), func(b *ucdp.EnumBuilder) {
		b.Add(0, "linear")
		b.Add(1, "cyclic")
	})
	st := ucdp.NewStructType("CfgType", func(b *ucdp.StructBuilder) {
		b.Add("mode", mode)
	})
	sig := ucdp.NewSignal(st, "cfg_s")
	assert.Equal(t, []string{"cfg_s", "cfg_mode_s"}, identNames(sig.Iter()))
	assert.Equal(t, []string{"cfg_mode_s"}, identNames(sig.Leaves()))
}
