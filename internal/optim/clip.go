package optim

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/tensor"
)

// ClipByNorm rescales grad so its L2 norm does not exceed maxNorm,
// leaving it untouched when already within bounds (spec.md §5.2).
func ClipByNorm(grad tensor.Tensor, maxNorm float32) tensor.Tensor {
	var sumSq float32
	for _, v := range grad.Data() {
		sumSq += v * v
	}
	norm := math32.Sqrt(sumSq)
	if norm <= maxNorm || norm == 0 {
		return grad
	}
	scale := maxNorm / norm
	out := tensor.New(grad.Shape(), false)
	od, gd := out.Data(), grad.Data()
	for i := range od {
		od[i] = gd[i] * scale
	}
	return out
}

// ClipByValue clamps every element of grad to [-limit, limit].
func ClipByValue(grad tensor.Tensor, limit float32) tensor.Tensor {
	out := tensor.New(grad.Shape(), false)
	od, gd := out.Data(), grad.Data()
	for i, v := range gd {
		switch {
		case v > limit:
			od[i] = limit
		case v < -limit:
			od[i] = -limit
		default:
			od[i] = v
		}
	}
	return out
}

// ClipByRange clamps every element of grad to [lo, hi].
func ClipByRange(grad tensor.Tensor, lo, hi float32) tensor.Tensor {
	out := tensor.New(grad.Shape(), false)
	od, gd := out.Data(), grad.Data()
	for i, v := range gd {
		switch {
		case v > hi:
			od[i] = hi
		case v < lo:
			od[i] = lo
		default:
			od[i] = v
		}
	}
	return out
}

// ClipBySign replaces every element of grad with its sign (-1, 0 or 1),
// discarding magnitude entirely — the most aggressive clipping variant.
func ClipBySign(grad tensor.Tensor) tensor.Tensor {
	out := tensor.New(grad.Shape(), false)
	od, gd := out.Data(), grad.Data()
	for i, v := range gd {
		switch {
		case v > 0:
			od[i] = 1
		case v < 0:
			od[i] = -1
		}
	}
	return out
}
