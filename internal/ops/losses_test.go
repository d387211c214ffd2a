package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotensor/internal/tensor"
)

func TestMSEForward(t *testing.T) {
	pred := tensor.FromSlice(tensor.NewShapeInts(2), []float32{1, 2}, false)
	target := tensor.FromSlice(tensor.NewShapeInts(2), []float32{0, 0}, false)
	loss := MSE(pred, target)
	require.Equal(t, 1, loss.Rank())
	assert.InDelta(t, 2.5, loss.Data()[0], 1e-6) // (1+4)/2
}

func TestMAEForward(t *testing.T) {
	pred := tensor.FromSlice(tensor.NewShapeInts(2), []float32{1, -2}, false)
	target := tensor.FromSlice(tensor.NewShapeInts(2), []float32{0, 0}, false)
	assert.InDelta(t, 1.5, MAE(pred, target).Data()[0], 1e-6)
}

func TestHuberRejectsNonPositiveDelta(t *testing.T) {
	pred := tensor.New(tensor.NewShapeInts(2), false)
	target := tensor.New(tensor.NewShapeInts(2), false)
	assert.Panics(t, func() { Huber(pred, target, 0) })
}

func TestHuberMatchesMSEInsideThreshold(t *testing.T) {
	pred := tensor.FromSlice(tensor.NewShapeInts(1), []float32{0.2}, false)
	target := tensor.FromSlice(tensor.NewShapeInts(1), []float32{0}, false)
	h := Huber(pred, target, 1.0).Data()[0]
	assert.InDelta(t, 0.5*0.2*0.2, h, 1e-6)
}

func TestSoftmaxCrossEntropyMatchesNaiveForm(t *testing.T) {
	logits := tensor.FromSlice(tensor.NewShapeInts(1, 2), []float32{0, 0}, false)
	target := tensor.FromSlice(tensor.NewShapeInts(1, 2), []float32{1, 0}, false)
	loss := SoftmaxCrossEntropy(logits, target).Data()[0]
	// softmax(0,0) = (0.5,0.5); -log(0.5) = ln(2)
	assert.InDelta(t, 0.6931472, loss, 1e-5)
}

func TestSoftmaxCrossEntropyShapeMismatchPanics(t *testing.T) {
	logits := tensor.New(tensor.NewShapeInts(2, 3), false)
	target := tensor.New(tensor.NewShapeInts(2, 2), false)
	assert.Panics(t, func() { SoftmaxCrossEntropy(logits, target) })
}
