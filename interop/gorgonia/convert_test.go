package gorgonia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotensor/internal/tensor"
	interop "github.com/itohio/gotensor/interop/gorgonia"
)

func TestToGorgoniaCopiesShapeAndData(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, false)
	d, err := interop.ToGorgonia(x)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, d.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, d.Data().([]float32))
}

func TestToGorgoniaCopyIsIndependent(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2), []float32{1, 2}, false)
	d, err := interop.ToGorgonia(x)
	require.NoError(t, err)
	x.Data()[0] = 99
	assert.Equal(t, float32(1), d.Data().([]float32)[0])
}

func TestMustToGorgoniaPanicsOnRankZero(t *testing.T) {
	var x tensor.Tensor
	assert.Panics(t, func() { interop.MustToGorgonia(x) })
}
