package ops

import (
	"github.com/itohio/gotensor/internal/arena"
	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/shapes"
	"github.com/itohio/gotensor/internal/tensor"
)

// SumAll reduces t to a rank-1, one-element tensor holding the sum of
// every value (spec.md §4.2, "Reduction to scalar" — never rank 0).
func SumAll(t tensor.Tensor) tensor.Tensor {
	if t.Size() == 0 {
		errs.Domainf("sum_all: empty tensor")
	}
	var sum float32
	for _, v := range t.Data() {
		sum += v
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Ones(t.Shape(), false)
	}
	return track(out, tensor.OpSumAll, grad, [4]int32{}, t)
}

// MeanAll reduces t to a rank-1, one-element tensor holding the mean of
// every value.
func MeanAll(t tensor.Tensor) tensor.Tensor {
	if t.Size() == 0 {
		errs.Domainf("mean_all: empty tensor")
	}
	n := t.Size()
	var sum float32
	for _, v := range t.Data() {
		sum += v
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum / float32(n)
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Full(t.Shape(), 1/float32(n), false)
	}
	return track(out, tensor.OpMeanAll, grad, [4]int32{}, t)
}

// SumAxis collapses axis from t's shape, summing along it (spec.md §4.2,
// "Reduction along an axis"). The local gradient broadcasts 1 back over
// the reduced axis.
func SumAxis(t tensor.Tensor, axis int) tensor.Tensor {
	axis = t.Shape().NormalizeAxis(axis)
	out := reduceAxis(t, axis, func(acc, v float32) float32 { return acc + v })
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Ones(t.Shape(), false)
	}
	return track(out, tensor.OpSumAxis, grad, [4]int32{int32(axis)}, t)
}

// MeanAxis collapses axis from t's shape, averaging along it. The local
// gradient broadcasts 1/N back over the reduced axis, N being the
// reduced extent.
func MeanAxis(t tensor.Tensor, axis int) tensor.Tensor {
	axis = t.Shape().NormalizeAxis(axis)
	n := float32(t.Shape()[axis])
	sum := reduceAxis(t, axis, func(acc, v float32) float32 { return acc + v })
	out := sum
	for i := range out.Data() {
		out.Data()[i] /= n
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Full(t.Shape(), 1/n, false)
	}
	return track(out, tensor.OpMeanAxis, grad, [4]int32{int32(axis)}, t)
}

// reduceAxis applies a commutative, associative accumulator along axis,
// returning a tensor shaped like t with axis removed.
func reduceAxis(t tensor.Tensor, axis int, accum func(acc, v float32) float32) tensor.Tensor {
	shape := t.Shape()
	outShape := shapes.AxisShape(shape, axis)
	out := tensor.New(outShape, false)
	strides := shape.Strides()
	data := t.Data()
	outStrides := outShape.Strides()
	dst := out.Data()

	idx := arena.AllocInt32(len(shape))
	for flat := 0; flat < len(data); flat++ {
		rem := flat
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d] = int32(rem % int(shape[d]))
			rem /= int(shape[d])
		}
		outOff := 0
		oi := 0
		for d := range shape {
			if d == axis {
				continue
			}
			outOff += int(idx[d]) * outStrides[oi]
			oi++
		}
		if idx[axis] == 0 {
			dst[outOff] = data[flat]
		} else {
			dst[outOff] = accum(dst[outOff], data[flat])
		}
	}
	_ = strides
	return out
}

// MaxAll returns the maximum value over every element of t as a rank-1
// one-element tensor. Its gradient is 1/k at each argmax position, k
// being the number of tied winners (spec.md §4.3).
func MaxAll(t tensor.Tensor) tensor.Tensor {
	return extremeAll(t, tensor.OpMaxAll, true)
}

// MinAll returns the minimum value over every element of t, with the
// same tie-splitting gradient rule as MaxAll.
func MinAll(t tensor.Tensor) tensor.Tensor {
	return extremeAll(t, tensor.OpMinAll, false)
}

func extremeAll(t tensor.Tensor, op tensor.OpKind, wantMax bool) tensor.Tensor {
	data := t.Data()
	if len(data) == 0 {
		errs.Domainf("%s: empty tensor", op)
	}
	best := data[0]
	for _, v := range data[1:] {
		if (wantMax && v > best) || (!wantMax && v < best) {
			best = v
		}
	}
	k := 0
	for _, v := range data {
		if v == best {
			k++
		}
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = best
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(t.Shape(), false)
		gd := g.Data()
		share := 1 / float32(k)
		for j, v := range data {
			if v == best {
				gd[j] = share
			}
		}
		return g
	}
	return track(out, op, grad, [4]int32{}, t)
}

// MaxAxis returns the per-slot maximum along axis plus the winning
// linear index within that slot (ties resolve to the first occurrence;
// gradient flows only to the winner — spec.md §4.3).
func MaxAxis(t tensor.Tensor, axis int) (tensor.Tensor, tensor.Tensor) {
	return extremeAxis(t, axis, tensor.OpMaxAxis, true)
}

// MinAxis is the MaxAxis counterpart for minima.
func MinAxis(t tensor.Tensor, axis int) (tensor.Tensor, tensor.Tensor) {
	return extremeAxis(t, axis, tensor.OpMinAxis, false)
}

func extremeAxis(t tensor.Tensor, axis int, op tensor.OpKind, wantMax bool) (tensor.Tensor, tensor.Tensor) {
	axis = t.Shape().NormalizeAxis(axis)
	shape := t.Shape()
	outShape := shapes.AxisShape(shape, axis)
	values := tensor.New(outShape, false)
	indices := tensor.New(outShape, false) // winning index along axis, stored as float32

	strides := shape.Strides()
	outStrides := outShape.Strides()
	data := t.Data()
	vdst := values.Data()
	idst := indices.Data()
	axisLen := int(shape[axis])

	idx := arena.AllocInt32(len(shape))
	seen := make([]bool, len(vdst))
	for flat := 0; flat < len(data); flat++ {
		rem := flat
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d] = int32(rem % int(shape[d]))
			rem /= int(shape[d])
		}
		outOff := 0
		oi := 0
		for d := range shape {
			if d == axis {
				continue
			}
			outOff += int(idx[d]) * outStrides[oi]
			oi++
		}
		v := data[flat]
		if !seen[outOff] || (wantMax && v > vdst[outOff]) || (!wantMax && v < vdst[outOff]) {
			vdst[outOff] = v
			idst[outOff] = float32(idx[axis])
			seen[outOff] = true
		}
	}
	_ = strides
	_ = axisLen

	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(shape, false)
		gd := g.Data()
		idxw := arena.AllocInt32(len(shape))
		for flat := 0; flat < len(gd); flat++ {
			rem := flat
			for d := len(shape) - 1; d >= 0; d-- {
				idxw[d] = int32(rem % int(shape[d]))
				rem /= int(shape[d])
			}
			outOff := 0
			oi := 0
			for d := range shape {
				if d == axis {
					continue
				}
				outOff += int(idxw[d]) * outStrides[oi]
				oi++
			}
			if int32(idxw[axis]) == int32(idst[outOff]) {
				gd[flat] = 1
			}
		}
		return g
	}
	valuesTracked := track(values, op, grad, [4]int32{int32(axis)}, t)
	return valuesTracked, indices
}
