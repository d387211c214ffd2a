package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotensor/internal/tensor"
)

func TestTransposeInvolution(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, false)
	once := Transpose(x, 0, 1)
	twice := Transpose(once, 0, 1)
	assert.Equal(t, x.Shape(), twice.Shape())
	assert.Equal(t, x.Data(), twice.Data())
}

func TestUnsqueezeThenSqueezeRoundTrips(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, false)
	y := Unsqueeze(x, 0)
	require.Equal(t, tensor.NewShapeInts(1, 2, 3), y.Shape())
	assert.Equal(t, x.Data(), y.Data())
}

func TestNegAbsSquareReciprocal(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(3), []float32{-2, 0, 4}, false)
	assert.Equal(t, []float32{2, 0, -4}, Neg(x).Data())
	assert.Equal(t, []float32{2, 0, 4}, Abs(x).Data())
	assert.Equal(t, []float32{4, 0, 16}, Square(x).Data())
	assert.InDelta(t, -0.5, Reciprocal(x).Data()[0], 1e-6)
}

func TestLinearComposesMatmulAndAdd(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(1, 2), []float32{1, 2}, false)
	w := tensor.FromSlice(tensor.NewShapeInts(2, 2), []float32{1, 0, 0, 1}, false)
	b := tensor.FromSlice(tensor.NewShapeInts(1, 2), []float32{10, 20}, false)
	out := Linear(x, w, b)
	assert.Equal(t, []float32{11, 22}, out.Data())
}

func TestDetachStripsGradNode(t *testing.T) {
	x := tensor.New(tensor.NewShapeInts(2), true)
	d := Detach(x)
	assert.False(t, d.IsTracked())
}
