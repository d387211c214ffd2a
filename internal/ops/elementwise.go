package ops

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/shapes"
	"github.com/itohio/gotensor/internal/tensor"
)

// Add computes z = x + y, broadcasting as needed (spec.md §4.3,
// elementwise binary table: dz/dx = 1, dz/dy = 1).
func Add(x, y tensor.Tensor) tensor.Tensor {
	xb, yb := shapes.Broadcast(x, y)
	out := tensor.New(xb.Shape(), false)
	od, xd, yd := out.Data(), xb.Data(), yb.Data()
	for i := range od {
		od[i] = xd[i] + yd[i]
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return tensor.Ones(output.Shape(), false)
	}
	return track(out, tensor.OpAdd, grad, [4]int32{}, x, y)
}

// Sub computes z = x - y, broadcasting as needed (dz/dx = 1, dz/dy = -1).
func Sub(x, y tensor.Tensor) tensor.Tensor {
	xb, yb := shapes.Broadcast(x, y)
	out := tensor.New(xb.Shape(), false)
	od, xd, yd := out.Data(), xb.Data(), yb.Data()
	for i := range od {
		od[i] = xd[i] - yd[i]
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		if i == 0 {
			return tensor.Ones(output.Shape(), false)
		}
		return tensor.Full(output.Shape(), -1, false)
	}
	return track(out, tensor.OpSub, grad, [4]int32{}, x, y)
}

// Mul computes z = x * y, broadcasting as needed (dz/dx = y, dz/dy = x).
func Mul(x, y tensor.Tensor) tensor.Tensor {
	xb, yb := shapes.Broadcast(x, y)
	out := tensor.New(xb.Shape(), false)
	od, xd, yd := out.Data(), xb.Data(), yb.Data()
	for i := range od {
		od[i] = xd[i] * yd[i]
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		if i == 0 {
			return yb
		}
		return xb
	}
	return track(out, tensor.OpMul, grad, [4]int32{}, x, y)
}

// Div computes z = x / y, broadcasting as needed (dz/dx = 1/y,
// dz/dy = -x/y^2).
func Div(x, y tensor.Tensor) tensor.Tensor {
	xb, yb := shapes.Broadcast(x, y)
	out := tensor.New(xb.Shape(), false)
	od, xd, yd := out.Data(), xb.Data(), yb.Data()
	for i := range od {
		od[i] = xd[i] / yd[i]
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(output.Shape(), false)
		gd := g.Data()
		if i == 0 {
			for j := range gd {
				gd[j] = 1 / yb.Data()[j]
			}
		} else {
			for j := range gd {
				y := yb.Data()[j]
				gd[j] = -xb.Data()[j] / (y * y)
			}
		}
		return g
	}
	return track(out, tensor.OpDiv, grad, [4]int32{}, x, y)
}

// Pow computes z = x^y, broadcasting as needed (dz/dx = y*x^(y-1),
// dz/dy = x^y*ln(x), both partials defined as 0 at x<=0 to avoid NaNs —
// spec.md §4.3).
func Pow(x, y tensor.Tensor) tensor.Tensor {
	xb, yb := shapes.Broadcast(x, y)
	out := tensor.New(xb.Shape(), false)
	od, xd, yd := out.Data(), xb.Data(), yb.Data()
	for i := range od {
		od[i] = math32.Pow(xd[i], yd[i])
	}
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(output.Shape(), false)
		gd := g.Data()
		if i == 0 {
			for j := range gd {
				x, y := xb.Data()[j], yb.Data()[j]
				if x <= 0 {
					gd[j] = 0
					continue
				}
				gd[j] = y * math32.Pow(x, y-1)
			}
		} else {
			for j := range gd {
				x, y := xb.Data()[j], yb.Data()[j]
				if x <= 0 {
					gd[j] = 0
					continue
				}
				gd[j] = math32.Pow(x, y) * math32.Log(x)
			}
		}
		return g
	}
	return track(out, tensor.OpPow, grad, [4]int32{}, x, y)
}
