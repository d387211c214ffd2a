package ops

import "github.com/itohio/gotensor/internal/tensor"

// Neg computes -x elementwise (dz/dx = -1).
func Neg(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Full(x.Shape(), -1, false)
	}
	return unaryElementwise(x, tensor.OpNeg, func(v float32) float32 { return -v }, grad)
}

// Abs computes |x| elementwise (dz/dx = sign(x), 0 at x=0).
func Abs(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			switch {
			case xd[j] > 0:
				gd[j] = 1
			case xd[j] < 0:
				gd[j] = -1
			}
		}
		return g
	}
	return unaryElementwise(x, tensor.OpAbs, func(v float32) float32 {
		if v < 0 {
			return -v
		}
		return v
	}, grad)
}

// Square computes x^2 elementwise (dz/dx = 2x).
func Square(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			gd[j] = 2 * xd[j]
		}
		return g
	}
	return unaryElementwise(x, tensor.OpSquare, func(v float32) float32 { return v * v }, grad)
}

// Reciprocal computes 1/x elementwise (dz/dx = -1/x^2).
func Reciprocal(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			gd[j] = -1 / (xd[j] * xd[j])
		}
		return g
	}
	return unaryElementwise(x, tensor.OpReciprocal, func(v float32) float32 { return 1 / v }, grad)
}

// Transpose swaps axis1 and axis2 of x, tracked for autograd. Its
// backward is special-cased in the autograd engine (a coordinate
// permutation, not an elementwise chain rule) rather than dispatched
// through a GradFn — Params carries the two axes.
func Transpose(x tensor.Tensor, axis1, axis2 int) tensor.Tensor {
	shape := x.Shape()
	a1 := int32(shape.NormalizeAxis(axis1))
	a2 := int32(shape.NormalizeAxis(axis2))
	out := RawTranspose(x, int(a1), int(a2))
	return track(out, tensor.OpTranspose, nil, [4]int32{a1, a2}, x)
}

// Unsqueeze inserts a size-1 axis at position axis, tracked for
// autograd. Its backward is special-cased in the autograd engine: since
// element order is unchanged, the upstream gradient is simply reshaped
// back down by dropping the inserted axis — Params carries the axis.
func Unsqueeze(x tensor.Tensor, axis int) tensor.Tensor {
	shape := x.Shape()
	if axis < 0 {
		axis += shape.Rank() + 1
	}
	out := tensor.ReshapeView(x, shape.WithAxisInserted(axis))
	// ReshapeView aliases x's backing storage; copy so the tracked
	// output owns independent data like every other operator result.
	copyOut := tensor.New(out.Shape(), false)
	copy(copyOut.Data(), out.Data())
	return track(copyOut, tensor.OpUnsqueeze, nil, [4]int32{int32(axis)}, x)
}

// Detach returns an alias of t (sharing its buffer) severed from the
// autograd graph (spec.md §4.4, "Detach"): gradients never flow through
// it, and it carries no GradNode regardless of how t was produced.
func Detach(t tensor.Tensor) tensor.Tensor {
	return t.Detach()
}

// Linear computes x·w + b, the fused affine transform at the core of a
// dense layer. It is expressed as a composition of the already-tracked
// MatMul and Add operators rather than its own GradFn: the chain rule
// through those two nodes already yields the correct gradients for x,
// w and b, so no bespoke backward math is needed.
func Linear(x, w, b tensor.Tensor) tensor.Tensor {
	return Add(MatMul(x, w), b)
}
