package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotensor/internal/autograd"
	"github.com/itohio/gotensor/internal/ops"
	"github.com/itohio/gotensor/internal/optim"
	"github.com/itohio/gotensor/internal/tensor"
)

func TestNewSGDRejectsInvalidHyperparameters(t *testing.T) {
	w := []tensor.Tensor{tensor.New(tensor.NewShapeInts(1), true)}
	_, err := optim.NewSGD(w, 0, 0, 0)
	assert.Error(t, err)
	_, err = optim.NewSGD(w, 0.1, -1, 0)
	assert.Error(t, err)
}

func TestSGDStepMovesDownhillOnQuadratic(t *testing.T) {
	w := tensor.FromSlice(tensor.NewShapeInts(1), []float32{10}, true)
	sgd, err := optim.NewSGD([]tensor.Tensor{w}, 0.1, 0, 0)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		sgd.ZeroGrad()
		loss := ops.Square(w)
		autograd.Grad(loss)
		sgd.Step()
	}
	assert.Less(t, w.Data()[0], float32(1))
	assert.Greater(t, w.Data()[0], float32(-1))
}

func TestAdamStepSanity(t *testing.T) {
	w := tensor.FromSlice(tensor.NewShapeInts(1), []float32{10}, true)
	adam, err := optim.NewAdam([]tensor.Tensor{w}, 0.5, 0.9, 0.999, 1e-8)
	require.NoError(t, err)

	before := w.Data()[0]
	loss := ops.Square(w)
	autograd.Grad(loss)
	adam.Step()
	assert.Less(t, w.Data()[0], before) // gradient is positive at w=10, so it must decrease
}

func TestZeroGradClearsAccumulatedGradient(t *testing.T) {
	w := tensor.FromSlice(tensor.NewShapeInts(1), []float32{2}, true)
	sgd, err := optim.NewSGD([]tensor.Tensor{w}, 0.1, 0, 0)
	require.NoError(t, err)

	autograd.Grad(ops.Square(w))
	node := w.GradNode()
	require.False(t, node.Acc.Empty())

	sgd.ZeroGrad()
	assert.Equal(t, []float32{0}, node.Acc.Data())
}

func TestZeroGradAllocatesWhenGradientNeverSet(t *testing.T) {
	w := tensor.New(tensor.NewShapeInts(1), true)
	sgd, err := optim.NewSGD([]tensor.Tensor{w}, 0.1, 0, 0)
	require.NoError(t, err)

	require.True(t, w.GradNode().Acc.Empty())
	sgd.ZeroGrad()
	assert.False(t, w.GradNode().Acc.Empty())
	assert.Equal(t, []float32{0}, w.GradNode().Acc.Data())
}

func TestMustNewAdamPanicsOnInvalidBeta(t *testing.T) {
	w := []tensor.Tensor{tensor.New(tensor.NewShapeInts(1), true)}
	assert.Panics(t, func() { optim.MustNewAdam(w, 0.1, 1.5, 0.9, 1e-8) })
}

func TestClipByNormRescales(t *testing.T) {
	g := tensor.FromSlice(tensor.NewShapeInts(2), []float32{3, 4}, false) // norm 5
	clipped := optim.ClipByNorm(g, 1)
	assert.InDelta(t, 0.6, clipped.Data()[0], 1e-6)
	assert.InDelta(t, 0.8, clipped.Data()[1], 1e-6)
}

func TestClipByNormNoopWithinBound(t *testing.T) {
	g := tensor.FromSlice(tensor.NewShapeInts(2), []float32{0.1, 0.1}, false)
	clipped := optim.ClipByNorm(g, 10)
	assert.Equal(t, g.ID(), clipped.ID())
}

func TestClipByValue(t *testing.T) {
	g := tensor.FromSlice(tensor.NewShapeInts(3), []float32{-5, 0, 5}, false)
	assert.Equal(t, []float32{-1, 0, 1}, optim.ClipByValue(g, 1).Data())
}

func TestClipBySign(t *testing.T) {
	g := tensor.FromSlice(tensor.NewShapeInts(3), []float32{-5, 0, 5}, false)
	assert.Equal(t, []float32{-1, 0, 1}, optim.ClipBySign(g).Data())
}
