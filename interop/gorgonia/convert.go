// Package gorgonia converts a gotensor tensor into a gorgonia.org/tensor
// Dense for one-way interop with the broader Gorgonia ecosystem (plotting,
// alternate execution backends). gotensor's own autograd tape never
// round-trips through it — grounded on the teacher's own
// x/math/tensor/gorgonia package, which builds gorgonia.org/tensor.Dense
// values the same way (tensor.New + tensor.WithShape + tensor.WithBacking).
package gorgonia

import (
	"fmt"

	gtensor "gorgonia.org/tensor"

	"github.com/itohio/gotensor/internal/tensor"
)

// ToGorgonia copies t into a new *gorgonia.org/tensor.Dense with the
// same shape and float32 data. The returned Dense owns an independent
// copy of the data — mutating one does not affect the other.
func ToGorgonia(t tensor.Tensor) (*gtensor.Dense, error) {
	shape := t.Shape()
	if shape.Rank() == 0 {
		return nil, fmt.Errorf("gorgonia.ToGorgonia: tensor has no shape")
	}
	dims := make([]int, shape.Rank())
	for i := range shape {
		dims[i] = int(shape[i])
	}
	data := make([]float32, len(t.Data()))
	copy(data, t.Data())
	return gtensor.New(gtensor.WithShape(dims...), gtensor.Of(gtensor.Float32), gtensor.WithBacking(data)), nil
}

// MustToGorgonia is ToGorgonia, panicking on error.
func MustToGorgonia(t tensor.Tensor) *gtensor.Dense {
	d, err := ToGorgonia(t)
	if err != nil {
		panic(err)
	}
	return d
}
