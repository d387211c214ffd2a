package optim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/gtlog"
	"github.com/itohio/gotensor/internal/tensor"
)

// RMSProp tracks an exponential moving average of squared gradients per
// parameter (spec.md §5.1).
type RMSProp struct {
	params []tensor.Tensor
	lr     float32
	decay  float32
	eps    float32
	avg    []tensor.Tensor
}

// NewRMSProp validates hyperparameters and returns an RMSProp optimizer.
// lr and eps must be positive; decay (the moving-average coefficient)
// must lie in [0, 1).
func NewRMSProp(params []tensor.Tensor, lr, decay, eps float32) (*RMSProp, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("NewRMSProp: lr must be positive, got %v", lr)
	}
	if decay < 0 || decay >= 1 {
		return nil, fmt.Errorf("NewRMSProp: decay must be in [0,1), got %v", decay)
	}
	if eps <= 0 {
		return nil, fmt.Errorf("NewRMSProp: eps must be positive, got %v", eps)
	}
	r := &RMSProp{params: params, lr: lr, decay: decay, eps: eps, avg: make([]tensor.Tensor, len(params))}
	for i, p := range params {
		r.avg[i] = tensor.Zeros(p.Shape(), false)
	}
	return r, nil
}

// MustNewRMSProp is NewRMSProp, panicking on invalid hyperparameters.
func MustNewRMSProp(params []tensor.Tensor, lr, decay, eps float32) *RMSProp {
	r, err := NewRMSProp(params, lr, decay, eps)
	if err != nil {
		panic(err)
	}
	return r
}

// Step applies one RMSProp update. It does not clear the accumulated
// gradient — call ZeroGrad between training steps to do that
// explicitly.
func (r *RMSProp) Step() {
	for i, p := range r.params {
		node := p.GradNode()
		if node == nil || node.Acc.Empty() {
			continue
		}
		g := node.Acc.Data()
		pd := p.Data()
		avgd := r.avg[i].Data()
		for j := range pd {
			avgd[j] = r.decay*avgd[j] + (1-r.decay)*g[j]*g[j]
			pd[j] -= r.lr * g[j] / (math32.Sqrt(avgd[j]) + r.eps)
		}
	}
	gtlog.Log.Debug().Int("params", len(r.params)).Msg("rmsprop: step")
}

// ZeroGrad zeros every parameter's accumulated gradient, allocating one
// if the parameter has never been backpropagated through yet.
func (r *RMSProp) ZeroGrad() {
	for _, p := range r.params {
		node := p.GradNode()
		if node == nil {
			continue
		}
		node.Acc = tensor.Zeros(p.Shape(), false)
	}
	gtlog.Log.Trace().Int("params", len(r.params)).Msg("rmsprop: zero_grad")
}
