// Package shapes implements the broadcasting and reduction algebra of
// spec.md §4.2: compatibility/expansion of differently-shaped operands,
// axis/whole-tensor reduction, and the shape-recovery inverses the
// autograd engine runs during backward.
package shapes

import (
	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/tensor"
)

// Compatible reports whether a and b are broadcast-compatible: after
// right-aligning and padding the shorter shape with 1s, every
// corresponding dimension pair satisfies a==b || a==1 || b==1.
func Compatible(a, b tensor.Shape) bool {
	_, ok := resultShape(a, b)
	return ok
}

// Result returns the broadcast result shape (the elementwise maximum of
// the right-aligned, 1-padded inputs), panicking with CategoryShape if a
// and b are incompatible or the result would exceed MaxDims.
func Result(a, b tensor.Shape) tensor.Shape {
	r, ok := resultShape(a, b)
	if !ok {
		errs.Shapef("broadcast: incompatible shapes %s and %s", a, b)
	}
	return r
}

func resultShape(a, b tensor.Shape) (tensor.Shape, bool) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	if rank > tensor.MaxDims {
		return nil, false
	}
	out := make(tensor.Shape, rank)
	for i := 0; i < rank; i++ {
		da := dimAt(a, rank, i)
		db := dimAt(b, rank, i)
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, false
		}
	}
	return out, true
}

// dimAt returns the dimension of shape s at the i-th position in a
// right-aligned view padded to the given rank (padding value 1).
func dimAt(s tensor.Shape, rank, i int) int32 {
	pad := rank - len(s)
	if i < pad {
		return 1
	}
	return s[i-pad]
}

// Broadcast returns a and b expanded to their common broadcast shape.
// If a shape already matches the result shape, the original tensor is
// returned unchanged (no copy); otherwise a fresh, physically expanded
// tensor is allocated from the active pool (spec.md §4.2: "if their
// shapes already match, return them unchanged. Otherwise produce two
// new tensors, each physically expanded").
func Broadcast(a, b tensor.Tensor) (tensor.Tensor, tensor.Tensor) {
	target := Result(a.Shape(), b.Shape())
	return expandTo(a, target), expandTo(b, target)
}

// ExpandTo physically expands t to the given target shape, copying
// data. target must be broadcast-compatible with t's shape and have
// rank >= t's rank (padding is implicit on the left).
func ExpandTo(t tensor.Tensor, target tensor.Shape) tensor.Tensor {
	return expandTo(t, target)
}

func expandTo(t tensor.Tensor, target tensor.Shape) tensor.Tensor {
	if t.Shape().Equal(target) {
		return t
	}
	out := tensor.New(target, false)
	srcShape := t.Shape()
	pad := len(target) - len(srcShape)
	srcStrides := srcShape.Strides()
	dst := out.Data()
	src := t.Data()

	idx := make([]int32, len(target))
	for flat := 0; flat < len(dst); flat++ {
		// decode flat (row-major) index into target into idx
		rem := flat
		for d := len(target) - 1; d >= 0; d-- {
			idx[d] = int32(rem % int(target[d]))
			rem /= int(target[d])
		}
		// map to source index, collapsing broadcast (size-1) axes to 0
		srcOff := 0
		for d := 0; d < len(srcShape); d++ {
			td := idx[d+pad]
			if srcShape[d] == 1 {
				td = 0
			}
			srcOff += int(td) * srcStrides[d]
		}
		dst[flat] = src[srcOff]
	}
	return out
}
