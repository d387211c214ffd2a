package gradcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gotensor/internal/gradcheck"
	"github.com/itohio/gotensor/internal/ops"
	"github.com/itohio/gotensor/internal/tensor"
)

func TestNumericalMatchesKnownDerivativeOfSquare(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(1), []float32{3}, false)
	loss := func(x tensor.Tensor) tensor.Tensor { return ops.SumAll(ops.Square(x)) }
	num := gradcheck.Numerical(loss, x, 1e-2)
	assert.InDelta(t, 6, num.Data()[0], 1e-2) // d/dx x^2 = 2x = 6
}

func TestCompareReportsZeroDiscrepancyForIdenticalGradients(t *testing.T) {
	a := tensor.FromSlice(tensor.NewShapeInts(2), []float32{1, 2}, false)
	report := gradcheck.Compare(a, a)
	assert.Equal(t, 0.0, report.MaxAbsDiff)
	assert.True(t, report.Within(1e-9, 1e-9))
}

func TestCompareDetectsLargeDiscrepancy(t *testing.T) {
	a := tensor.FromSlice(tensor.NewShapeInts(1), []float32{10}, false)
	b := tensor.FromSlice(tensor.NewShapeInts(1), []float32{0}, false)
	report := gradcheck.Compare(a, b)
	assert.False(t, report.Within(1e-3, 1e-3))
}

func TestAnalyticAgainstNumericalOnSumSquare(t *testing.T) {
	x := tensor.FromSlice(tensor.NewShapeInts(3), []float32{1, -2, 3}, true)
	root := ops.SumAll(ops.Square(x))
	analytic := gradcheck.Analytic(root, x)

	x2 := tensor.FromSlice(tensor.NewShapeInts(3), []float32{1, -2, 3}, false)
	loss := func(x tensor.Tensor) tensor.Tensor { return ops.SumAll(ops.Square(x)) }
	numerical := gradcheck.Numerical(loss, x2, 1e-3)

	report := gradcheck.Compare(analytic, numerical)
	assert.True(t, report.Within(1e-2, 1e-2), report.String())
}
