package ops

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/tensor"
)

// unaryElementwise runs fwd over every element of x, building an output
// tensor and tracking it against grad, which receives the same index j
// used by fwd (spec.md §4.3, elementwise unary table).
func unaryElementwise(x tensor.Tensor, op tensor.OpKind, fwd func(v float32) float32, grad tensor.GradFn) tensor.Tensor {
	out := tensor.New(x.Shape(), false)
	xd, od := x.Data(), out.Data()
	for i, v := range xd {
		od[i] = fwd(v)
	}
	return track(out, op, grad, [4]int32{}, x)
}

// Log computes the natural logarithm elementwise (dz/dx = 1/x).
func Log(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			gd[j] = 1 / xd[j]
		}
		return g
	}
	return unaryElementwise(x, tensor.OpLog, math32.Log, grad)
}

// Exp computes e^x elementwise (dz/dx = e^x).
func Exp(x tensor.Tensor) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		return out
	}
	out = unaryElementwise(x, tensor.OpExp, math32.Exp, grad)
	return out
}

// Sin computes sin(x) elementwise (dz/dx = cos(x)).
func Sin(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			gd[j] = math32.Cos(xd[j])
		}
		return g
	}
	return unaryElementwise(x, tensor.OpSin, math32.Sin, grad)
}

// Cos computes cos(x) elementwise (dz/dx = -sin(x)).
func Cos(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			gd[j] = -math32.Sin(xd[j])
		}
		return g
	}
	return unaryElementwise(x, tensor.OpCos, math32.Cos, grad)
}

// Tan computes tan(x) elementwise (dz/dx = 1 + tan(x)^2).
func Tan(x tensor.Tensor) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, od := g.Data(), out.Data()
		for j := range gd {
			gd[j] = 1 + od[j]*od[j]
		}
		return g
	}
	out = unaryElementwise(x, tensor.OpTan, math32.Tan, grad)
	return out
}

// Relu computes max(0, x) elementwise (dz/dx = 1 if x>0 else 0).
func Relu(x tensor.Tensor) tensor.Tensor {
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd := g.Data(), x.Data()
		for j := range gd {
			if xd[j] > 0 {
				gd[j] = 1
			}
		}
		return g
	}
	return unaryElementwise(x, tensor.OpRelu, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	}, grad)
}

// Sigmoid computes 1/(1+e^-x) elementwise (dz/dx = sigmoid(x)*(1-sigmoid(x))).
func Sigmoid(x tensor.Tensor) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, od := g.Data(), out.Data()
		for j := range gd {
			s := od[j]
			gd[j] = s * (1 - s)
		}
		return g
	}
	out = unaryElementwise(x, tensor.OpSigmoid, func(v float32) float32 {
		return 1 / (1 + math32.Exp(-v))
	}, grad)
	return out
}

// Tanh computes tanh(x) elementwise (dz/dx = 1 - tanh(x)^2).
func Tanh(x tensor.Tensor) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, od := g.Data(), out.Data()
		for j := range gd {
			t := od[j]
			gd[j] = 1 - t*t
		}
		return g
	}
	out = unaryElementwise(x, tensor.OpTanh, math32.Tanh, grad)
	return out
}

// Elu computes the exponential linear unit with parameter alpha
// (dz/dx = 1 if x>0 else alpha*e^x = f(x)+alpha for x<=0).
func Elu(x tensor.Tensor, alpha float32) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd, od := g.Data(), x.Data(), out.Data()
		for j := range gd {
			if xd[j] > 0 {
				gd[j] = 1
			} else {
				gd[j] = od[j] + alpha
			}
		}
		return g
	}
	out = unaryElementwise(x, tensor.OpElu, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return alpha * (math32.Exp(v) - 1)
	}, grad)
	return out
}

// Selu scale/alpha constants as specified by Klambauer et al., consistent
// with the teacher's constant-table style for activation coefficients.
const (
	SeluAlpha = 1.6732632423543772
	SeluScale = 1.0507009873554805
)

// Selu computes the scaled exponential linear unit.
func Selu(x tensor.Tensor) tensor.Tensor {
	var out tensor.Tensor
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(x.Shape(), false)
		gd, xd, od := g.Data(), x.Data(), out.Data()
		for j := range gd {
			if xd[j] > 0 {
				gd[j] = SeluScale
			} else {
				gd[j] = od[j] + SeluScale*SeluAlpha
			}
		}
		return g
	}
	out = unaryElementwise(x, tensor.OpSelu, func(v float32) float32 {
		if v > 0 {
			return SeluScale * v
		}
		return SeluScale * SeluAlpha * (math32.Exp(v) - 1)
	}, grad)
	return out
}

// Softmax computes the numerically stable softmax along the last axis
// of x (subtract the row max before exponentiating). It is not
// differentiable — only SoftmaxCrossEntropy (losses.go) fuses softmax
// with a backward pass. The output never carries a GradNode, so no
// gradient flows back through it to x.
func Softmax(x tensor.Tensor) tensor.Tensor {
	shape := x.Shape()
	axis := shape.Rank() - 1
	n := int(shape[axis])
	rows := x.Size() / n

	out := tensor.New(shape, false)
	xd, od := x.Data(), out.Data()
	for r := 0; r < rows; r++ {
		base := r * n
		max := xd[base]
		for j := 1; j < n; j++ {
			if xd[base+j] > max {
				max = xd[base+j]
			}
		}
		var sum float32
		for j := 0; j < n; j++ {
			e := math32.Exp(xd[base+j] - max)
			od[base+j] = e
			sum += e
		}
		for j := 0; j < n; j++ {
			od[base+j] /= sum
		}
	}
	return out
}
