package optim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/gtlog"
	"github.com/itohio/gotensor/internal/tensor"
)

// Adam implements the Adam optimizer: first and second moment estimates
// with bias correction (spec.md §5.1; grounded on the reference
// implementation's adam.c, which validates the same hyperparameter
// ranges before taking a step).
type Adam struct {
	params  []tensor.Tensor
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int
	m       []tensor.Tensor
	v       []tensor.Tensor
}

// NewAdam validates hyperparameters and returns an Adam optimizer. lr
// and eps must be positive; beta1 and beta2 must lie in [0, 1).
func NewAdam(params []tensor.Tensor, lr, beta1, beta2, eps float32) (*Adam, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("NewAdam: lr must be positive, got %v", lr)
	}
	if beta1 < 0 || beta1 >= 1 {
		return nil, fmt.Errorf("NewAdam: beta1 must be in [0,1), got %v", beta1)
	}
	if beta2 < 0 || beta2 >= 1 {
		return nil, fmt.Errorf("NewAdam: beta2 must be in [0,1), got %v", beta2)
	}
	if eps <= 0 {
		return nil, fmt.Errorf("NewAdam: eps must be positive, got %v", eps)
	}
	a := &Adam{
		params: params, lr: lr, beta1: beta1, beta2: beta2, eps: eps,
		m: make([]tensor.Tensor, len(params)),
		v: make([]tensor.Tensor, len(params)),
	}
	for i, p := range params {
		a.m[i] = tensor.Zeros(p.Shape(), false)
		a.v[i] = tensor.Zeros(p.Shape(), false)
	}
	return a, nil
}

// MustNewAdam is NewAdam, panicking on invalid hyperparameters.
func MustNewAdam(params []tensor.Tensor, lr, beta1, beta2, eps float32) *Adam {
	a, err := NewAdam(params, lr, beta1, beta2, eps)
	if err != nil {
		panic(err)
	}
	return a
}

// Step applies one bias-corrected Adam update. It does not clear each
// parameter's accumulated gradient — call ZeroGrad between training
// steps to do that explicitly.
func (a *Adam) Step() {
	a.t++
	b1t := 1 - math32.Pow(a.beta1, float32(a.t))
	b2t := 1 - math32.Pow(a.beta2, float32(a.t))

	for i, p := range a.params {
		node := p.GradNode()
		if node == nil || node.Acc.Empty() {
			continue
		}
		g := node.Acc.Data()
		pd := p.Data()
		md := a.m[i].Data()
		vd := a.v[i].Data()
		for j := range pd {
			md[j] = a.beta1*md[j] + (1-a.beta1)*g[j]
			vd[j] = a.beta2*vd[j] + (1-a.beta2)*g[j]*g[j]
			mHat := md[j] / b1t
			vHat := vd[j] / b2t
			pd[j] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
		}
	}
	gtlog.Log.Debug().Int("params", len(a.params)).Int("t", a.t).Msg("adam: step")
}

// ZeroGrad zeros every parameter's accumulated gradient, allocating one
// if the parameter has never been backpropagated through yet.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		node := p.GradNode()
		if node == nil {
			continue
		}
		node.Acc = tensor.Zeros(p.Shape(), false)
	}
	gtlog.Log.Trace().Int("params", len(a.params)).Msg("adam: zero_grad")
}
