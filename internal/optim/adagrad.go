package optim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/gtlog"
	"github.com/itohio/gotensor/internal/tensor"
)

// AdaGrad accumulates the sum of squared gradients per parameter and
// scales the learning rate down accordingly (spec.md §5.1).
type AdaGrad struct {
	params []tensor.Tensor
	lr     float32
	eps    float32
	accum  []tensor.Tensor
}

// NewAdaGrad validates hyperparameters and returns an AdaGrad optimizer.
// lr must be positive; eps must be positive (it guards the division by
// the accumulated-gradient square root).
func NewAdaGrad(params []tensor.Tensor, lr, eps float32) (*AdaGrad, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("NewAdaGrad: lr must be positive, got %v", lr)
	}
	if eps <= 0 {
		return nil, fmt.Errorf("NewAdaGrad: eps must be positive, got %v", eps)
	}
	a := &AdaGrad{params: params, lr: lr, eps: eps, accum: make([]tensor.Tensor, len(params))}
	for i, p := range params {
		a.accum[i] = tensor.Zeros(p.Shape(), false)
	}
	return a, nil
}

// MustNewAdaGrad is NewAdaGrad, panicking on invalid hyperparameters.
func MustNewAdaGrad(params []tensor.Tensor, lr, eps float32) *AdaGrad {
	a, err := NewAdaGrad(params, lr, eps)
	if err != nil {
		panic(err)
	}
	return a
}

// Step applies one AdaGrad update. It does not clear the accumulated
// gradient — call ZeroGrad between training steps to do that
// explicitly.
func (a *AdaGrad) Step() {
	for i, p := range a.params {
		node := p.GradNode()
		if node == nil || node.Acc.Empty() {
			continue
		}
		g := node.Acc.Data()
		pd := p.Data()
		ad := a.accum[i].Data()
		for j := range pd {
			ad[j] += g[j] * g[j]
			pd[j] -= a.lr * g[j] / (math32.Sqrt(ad[j]) + a.eps)
		}
	}
	gtlog.Log.Debug().Int("params", len(a.params)).Msg("adagrad: step")
}

// ZeroGrad zeros every parameter's accumulated gradient, allocating one
// if the parameter has never been backpropagated through yet.
func (a *AdaGrad) ZeroGrad() {
	for _, p := range a.params {
		node := p.GradNode()
		if node == nil {
			continue
		}
		node.Acc = tensor.Zeros(p.Shape(), false)
	}
	gtlog.Log.Trace().Int("params", len(a.params)).Msg("adagrad: zero_grad")
}
