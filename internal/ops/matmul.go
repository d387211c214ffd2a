package ops

import (
	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/tensor"
)

// RawTranspose swaps axis1 and axis2 of t via coordinate permutation,
// with no autograd tracking. It backs both the tracked Transpose
// operator (unary.go) and the autograd engine's Matmul backward dispatch
// (spec.md §4.3, "transpose ... implemented via coordinate permutation").
func RawTranspose(t tensor.Tensor, axis1, axis2 int) tensor.Tensor {
	shape := t.Shape()
	axis1 = shape.NormalizeAxis(axis1)
	axis2 = shape.NormalizeAxis(axis2)

	outShape := shape.Clone()
	outShape[axis1], outShape[axis2] = outShape[axis2], outShape[axis1]
	out := tensor.New(outShape, false)

	strides := shape.Strides()
	outStrides := outShape.Strides()
	src, dst := t.Data(), out.Data()
	idx := make([]int32, len(shape))

	for flat := 0; flat < len(src); flat++ {
		rem := flat
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d] = int32(rem % int(shape[d]))
			rem /= int(shape[d])
		}
		oIdx := make([]int32, len(idx))
		copy(oIdx, idx)
		oIdx[axis1], oIdx[axis2] = oIdx[axis2], oIdx[axis1]
		outOff := 0
		for d := range oIdx {
			outOff += int(oIdx[d]) * outStrides[d]
		}
		srcOff := 0
		for d := range idx {
			srcOff += int(idx[d]) * strides[d]
		}
		dst[outOff] = src[srcOff]
	}
	return out
}

// RawMatmul computes C = A · B with A rank 2-4 shaped […, m, n] and B
// either the same batch shape as A or rank 2 shaped [n, p] (broadcast
// across A's batch), producing C shaped […, m, p] (spec.md §4.3,
// "Matrix multiplication"). It performs no autograd tracking — it is
// the kernel shared by the tracked MatMul operator and the autograd
// engine's special-cased Matmul backward dispatch.
func RawMatmul(a, b tensor.Tensor) tensor.Tensor {
	as, bs := a.Shape(), b.Shape()
	if as.Rank() < 2 || bs.Rank() < 2 {
		errs.Shapef("matmul: both operands must have rank >= 2, got %s and %s", as, bs)
	}

	m := int(as[as.Rank()-2])
	n := int(as[as.Rank()-1])
	bn := int(bs[bs.Rank()-2])
	p := int(bs[bs.Rank()-1])
	if n != bn {
		errs.Shapef("matmul: contracting dimension mismatch, %d vs %d (shapes %s, %s)", n, bn, as, bs)
	}

	batch := as[:as.Rank()-2]
	batched := bs.Rank()-2 == len(batch)
	if batched {
		for i, d := range batch {
			if bs[i] != d {
				errs.Shapef("matmul: batch dimensions mismatch, %s vs %s", as, bs)
			}
		}
	} else if bs.Rank() != 2 {
		errs.Shapef("matmul: B must be rank 2 or match A's batch dimensions, got %s", bs)
	}

	outShape := append(batch.Clone(), int32(m), int32(p))
	out := tensor.New(outShape, false)

	nBatches := 1
	for _, d := range batch {
		nBatches *= int(d)
	}

	ad, bd, od := a.Data(), b.Data(), out.Data()
	aBatchStride := m * n
	bBatchStride := 0
	if batched {
		bBatchStride = n * p
	}
	oBatchStride := m * p

	for bIdx := 0; bIdx < nBatches; bIdx++ {
		aBase := bIdx * aBatchStride
		bBase := bIdx * bBatchStride
		oBase := bIdx * oBatchStride
		for i := 0; i < m; i++ {
			for k := 0; k < n; k++ {
				av := ad[aBase+i*n+k]
				if av == 0 {
					continue
				}
				for j := 0; j < p; j++ {
					od[oBase+i*p+j] += av * bd[bBase+k*p+j]
				}
			}
		}
	}
	return out
}

// MatMul computes C = A · B (spec.md §4.3). Its backward is special-
// cased in the autograd engine (not dispatched through the generic
// elementwise chain rule): grad_A = upstream · B^T, grad_B = A^T · upstream.
func MatMul(a, b tensor.Tensor) tensor.Tensor {
	out := RawMatmul(a, b)
	return track(out, tensor.OpMatmul, nil, [4]int32{}, a, b)
}
