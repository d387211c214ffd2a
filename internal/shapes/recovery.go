package shapes

import "github.com/itohio/gotensor/internal/tensor"

// RecoverBroadcast is the inverse of Broadcast/ExpandTo, run during
// backward to route a gradient shaped like a broadcast *output* back to
// the shape of one of the broadcast *inputs* (spec.md §4.2, "Broadcasting
// recovery"): iterate dimensions from last to first; where the original
// input had extent 1 on an axis the gradient has extent >1, sum-reduce
// that axis (keeping it, not dropping it); leading axes the input never
// had are summed away and dropped entirely.
func RecoverBroadcast(grad tensor.Tensor, original tensor.Shape) tensor.Tensor {
	gradShape := grad.Shape()
	if gradShape.Equal(original) {
		return grad
	}

	pad := len(gradShape) - len(original)
	out := grad
	// Sum-reduce axes where the original had size 1 but the gradient
	// doesn't, keeping the axis (rank unchanged at this stage).
	for d := len(original) - 1; d >= 0; d-- {
		gd := d + pad
		if original[d] == 1 && out.Shape()[gd] != 1 {
			out = sumAxisKeepDims(out, gd)
		}
	}
	// Drop the leading axes the original input never had, summing them
	// away first.
	for len(out.Shape()) > len(original) {
		out = sumAxisDrop(out, 0)
	}
	return out
}

// RecoverReduction reinserts a size-1 axis at the position a forward
// Sum/Mean/MaxDim/MinDim removed, so the broadcast machinery can then
// expand it back across the reduced extent (spec.md §4.2, "Reduction
// recovery"). axis is the axis that was reduced in the *original* input
// rank (i.e. before removal).
func RecoverReduction(grad tensor.Tensor, axis int) tensor.Tensor {
	newShape := grad.Shape().WithAxisInserted(axis)
	out := tensor.New(newShape, false)
	copy(out.Data(), grad.Data())
	return out
}

// sumAxisKeepDims sum-reduces axis, keeping it as a size-1 dimension.
func sumAxisKeepDims(t tensor.Tensor, axis int) tensor.Tensor {
	shape := t.Shape()
	outShape := shape.Clone()
	outShape[axis] = 1
	out := tensor.New(outShape, false)
	outStrides := outShape.Strides()
	data := t.Data()
	dst := out.Data()
	idx := make([]int32, len(shape))
	for flat := 0; flat < len(data); flat++ {
		rem := flat
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d] = int32(rem % int(shape[d]))
			rem /= int(shape[d])
		}
		outOff := 0
		for d := range shape {
			v := idx[d]
			if d == axis {
				v = 0
			}
			outOff += int(v) * outStrides[d]
		}
		dst[outOff] += data[flat]
	}
	return out
}

// sumAxisDrop sum-reduces axis and removes it from the shape entirely.
func sumAxisDrop(t tensor.Tensor, axis int) tensor.Tensor {
	kept := sumAxisKeepDims(t, axis)
	return tensor.ReshapeView(kept, kept.Shape().WithoutAxis(axis))
}
