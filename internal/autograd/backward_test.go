package autograd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotensor/internal/autograd"
	"github.com/itohio/gotensor/internal/gradcheck"
	"github.com/itohio/gotensor/internal/ops"
	"github.com/itohio/gotensor/internal/tensor"
)

func TestAddBackward(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(3), []float32{1, 2, 3}, true)
	y := tensor.FromSlice(tensor.NewShapeInts(3), []float32{10, 20, 30}, true)
	z := ops.Add(x, y)

	autograd.Grad(z)
	assert.Equal(t, []float32{1, 1, 1}, x.GradNode().Acc.Data())
	assert.Equal(t, []float32{1, 1, 1}, y.GradNode().Acc.Data())
}

func TestAddBroadcastBackwardSumsExpandedAxis(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(1, 3), []float32{1, 2, 3}, true)
	y := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 1, 1, 1, 1, 1}, true)
	z := ops.Add(x, y)
	require.Equal(t, tensor.NewShapeInts(2, 3), z.Shape())

	autograd.Grad(z)
	// x was broadcast across the leading axis of size 2: its gradient
	// must sum the two rows' contributions back down to shape [1,3].
	assert.Equal(t, []float32{2, 2, 2}, x.GradNode().Acc.Data())
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, y.GradNode().Acc.Data())
}

func TestMulBackwardUsesOtherOperand(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2), []float32{2, 3}, true)
	y := tensor.FromSlice(tensor.NewShapeInts(2), []float32{5, 7}, true)
	z := ops.Mul(x, y)

	autograd.Grad(z)
	assert.Equal(t, []float32{5, 7}, x.GradNode().Acc.Data())
	assert.Equal(t, []float32{2, 3}, y.GradNode().Acc.Data())
}

func TestDivBackward(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(1), []float32{6}, true)
	y := tensor.FromSlice(tensor.NewShapeInts(1), []float32{3}, true)
	z := ops.Div(x, y)

	autograd.Grad(z)
	assert.InDelta(t, float32(1.0/3.0), x.GradNode().Acc.Data()[0], 1e-6)
	assert.InDelta(t, float32(-6.0/9.0), y.GradNode().Acc.Data()[0], 1e-6)
}

func TestPowZeroBaseGradientIsZeroNotNaN(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(1), []float32{0}, true)
	y := tensor.FromSlice(tensor.NewShapeInts(1), []float32{2}, true)
	z := ops.Pow(x, y)

	autograd.Grad(z)
	assert.Equal(t, float32(0), x.GradNode().Acc.Data()[0])
	assert.Equal(t, float32(0), y.GradNode().Acc.Data()[0])
}

func TestMatmulBackwardAgainstManualGradient(t *testing.T) {
	a := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, true)
	b := tensor.FromSlice(tensor.NewShapeInts(3, 2), []float32{1, 0, 0, 1, 1, 1}, true)
	c := ops.MatMul(a, b)
	require.Equal(t, tensor.NewShapeInts(2, 2), c.Shape())

	autograd.Grad(c)
	// upstream is ones([2,2]); grad_A = ones . B^T, grad_B = A^T . ones
	bt := ops.RawTranspose(b, 0, 1)
	wantA := ops.RawMatmul(tensor.Ones(tensor.NewShapeInts(2, 2), false), bt)
	at := ops.RawTranspose(a, 0, 1)
	wantB := ops.RawMatmul(at, tensor.Ones(tensor.NewShapeInts(2, 2), false))
	assert.Equal(t, wantA.Data(), a.GradNode().Acc.Data())
	assert.Equal(t, wantB.Data(), b.GradNode().Acc.Data())
}

func TestTransposeBackwardPermutesUpstream(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, true)
	y := ops.Transpose(x, 0, 1)
	require.Equal(t, tensor.NewShapeInts(3, 2), y.Shape())

	autograd.Grad(y)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, x.GradNode().Acc.Data())
}

func TestUnsqueezeBackwardDropsAxis(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, true)
	y := ops.Unsqueeze(x, 1)
	require.Equal(t, tensor.NewShapeInts(2, 1, 3), y.Shape())

	autograd.Grad(y)
	assert.Equal(t, x.Shape(), x.GradNode().Acc.Shape())
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, x.GradNode().Acc.Data())
}

func TestSumAxisBackwardBroadcastsOnes(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 4, 5, 6}, true)
	s := ops.SumAxis(x, 1)
	require.Equal(t, tensor.NewShapeInts(2), s.Shape())
	assert.Equal(t, []float32{6, 15}, s.Data())

	autograd.Grad(s)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, x.GradNode().Acc.Data())
}

func TestMeanAxisBackwardBroadcastsReciprocalN(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 4), []float32{1, 2, 3, 4, 5, 6, 7, 8}, true)
	m := ops.MeanAxis(x, 1)
	autograd.Grad(m)
	for _, v := range x.GradNode().Acc.Data() {
		assert.InDelta(t, 0.25, v, 1e-6)
	}
}

func TestMaxAxisBackwardOnlyFlowsToWinner(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 5, 3, 9, 2, 2}, true)
	mx, idx := ops.MaxAxis(x, 1)
	assert.Equal(t, []float32{5, 9}, mx.Data())
	assert.Equal(t, []float32{1, 0}, idx.Data())

	autograd.Grad(mx)
	assert.Equal(t, []float32{0, 1, 0, 1, 0, 0}, x.GradNode().Acc.Data())
}

func TestMaxAllSplitsGradientAcrossTies(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(4), []float32{3, 3, 1, 3}, true)
	m := ops.MaxAll(x)
	assert.Equal(t, []float32{3}, m.Data())

	autograd.Grad(m)
	third := float32(1.0 / 3.0)
	assert.Equal(t, []float32{third, third, 0, third}, x.GradNode().Acc.Data())
}

func TestBackwardAdditivityThroughDiamond(t *testing.T) {
	// z = (x+x) * x = 2x^2, so dz/dx = 4x.
	x := tensor.FromSlice(tensor.NewShapeInts(1), []float32{3}, true)
	sum := ops.Add(x, x)
	z := ops.Mul(sum, x)
	assert.Equal(t, []float32{18}, z.Data())

	autograd.Grad(z)
	assert.Equal(t, []float32{12}, x.GradNode().Acc.Data())
}

func TestGradientCheckReluSigmoidTanh(t *testing.T) {
	fns := map[string]func(tensor.Tensor) tensor.Tensor{
		"relu":    ops.Relu,
		"sigmoid": ops.Sigmoid,
		"tanh":    ops.Tanh,
		"square":  ops.Square,
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			x := tensor.FromSlice(tensor.NewShapeInts(4), []float32{-1.5, 0.5, 1.2, 2.0}, true)
			loss := func(xi tensor.Tensor) tensor.Tensor {
				return ops.SumAll(fn(xi))
			}
			root := loss(x)
			analytic := gradcheck.Analytic(root, x)

			x2 := tensor.FromSlice(tensor.NewShapeInts(4), []float32{-1.5, 0.5, 1.2, 2.0}, false)
			numeric := gradcheck.Numerical(loss, x2, 1e-3)

			report := gradcheck.Compare(analytic, numeric)
			assert.True(t, report.Within(1e-2, 1e-2), report.String())
		})
	}
}

func TestSoftmaxCrossEntropyGradient(t *testing.T) {
	logits := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{1, 2, 3, 1, 1, 1}, true)
	target := tensor.FromSlice(tensor.NewShapeInts(2, 3), []float32{0, 0, 1, 1, 0, 0}, false)
	loss := ops.SoftmaxCrossEntropy(logits, target)

	autograd.Grad(loss)
	g := logits.GradNode().Acc.Data()
	const n = 2 // batch size
	softmaxRow2 := float32(1.0 / 3.0)
	assert.InDelta(t, (softmaxRow2-1)/n, g[3], 1e-5)
	assert.InDelta(t, softmaxRow2/n, g[4], 1e-5)
	assert.InDelta(t, softmaxRow2/n, g[5], 1e-5)
}
