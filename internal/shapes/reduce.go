package shapes

import "github.com/itohio/gotensor/internal/tensor"

// AxisShape returns the output shape of reduce_dim(t, axis): the input
// rank minus one, remaining dimensions keeping their positions and
// sizes (spec.md §4.2, "Reduction along an axis").
func AxisShape(in tensor.Shape, axis int) tensor.Shape {
	return in.WithoutAxis(axis)
}

// AllShape is the output shape of reduce_all: always rank-1 with one
// element, never rank 0 (spec.md §4.2, "Reduction to scalar").
func AllShape() tensor.Shape {
	return tensor.NewShape(1)
}
