// Package gradcheck verifies analytic gradients computed by autograd
// against a central finite-difference approximation, the diagnostic
// spec.md §8 asks every differentiable operator's test to run. Summary
// statistics are computed with gonum's floats package rather than
// hand-rolled loops.
package gradcheck

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/itohio/gotensor/internal/autograd"
	"github.com/itohio/gotensor/internal/tensor"
)

// Numerical computes a central-difference approximation of d(loss)/dx
// for every element of x, where loss evaluates a scalar (rank-1,
// one-element) tensor from x. epsilon is the finite-difference step.
func Numerical(loss func(x tensor.Tensor) tensor.Tensor, x tensor.Tensor, epsilon float32) tensor.Tensor {
	grad := tensor.New(x.Shape(), false)
	gd := grad.Data()
	xd := x.Data()

	for i := range xd {
		orig := xd[i]

		xd[i] = orig + epsilon
		plus := loss(x).Data()[0]

		xd[i] = orig - epsilon
		minus := loss(x).Data()[0]

		xd[i] = orig
		gd[i] = (plus - minus) / (2 * epsilon)
	}
	return grad
}

// Analytic runs the autograd engine on root (a scalar loss built from
// x through tracked operators) and returns x's accumulated gradient.
func Analytic(root tensor.Tensor, x tensor.Tensor) tensor.Tensor {
	autograd.Grad(root)
	node := x.GradNode()
	if node == nil || node.Acc.Empty() {
		return tensor.Zeros(x.Shape(), false)
	}
	return node.Acc
}

// Report summarizes the discrepancy between an analytic and a numerical
// gradient: the max absolute difference and the max relative difference
// (relative to the numerical value, guarded against division by zero).
type Report struct {
	MaxAbsDiff float64
	MaxRelDiff float64
}

// String renders the report for test failure messages.
func (r Report) String() string {
	return fmt.Sprintf("max_abs_diff=%.3e max_rel_diff=%.3e", r.MaxAbsDiff, r.MaxRelDiff)
}

// Compare builds a Report from two same-shape gradients.
func Compare(analytic, numerical tensor.Tensor) Report {
	a := toFloat64(analytic.Data())
	n := toFloat64(numerical.Data())

	diff := make([]float64, len(a))
	copy(diff, a)
	floats.SubTo(diff, diff, n)
	for i := range diff {
		diff[i] = abs(diff[i])
	}

	maxAbs := floats.Max(diff)
	maxRel := 0.0
	for i := range diff {
		denom := abs(n[i])
		if denom < 1e-6 {
			denom = 1e-6
		}
		rel := diff[i] / denom
		if rel > maxRel {
			maxRel = rel
		}
	}
	return Report{MaxAbsDiff: maxAbs, MaxRelDiff: maxRel}
}

// Within reports whether the report's discrepancies are within the
// given absolute and relative tolerances.
func (r Report) Within(absTol, relTol float64) bool {
	return r.MaxAbsDiff <= absTol || r.MaxRelDiff <= relTol
}

func toFloat64(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
