// Package optim implements first-order gradient-descent optimizers over
// gotensor tensors (spec.md §5): SGD with optional momentum, AdaGrad,
// RMSProp and Adam, plus the gradient-clipping variants in clip.go.
package optim

import (
	"fmt"

	"github.com/itohio/gotensor/internal/gtlog"
	"github.com/itohio/gotensor/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum and
// weight decay (spec.md §5.1).
type SGD struct {
	params   []tensor.Tensor
	lr       float32
	momentum float32
	decay    float32
	velocity []tensor.Tensor
}

// NewSGD validates hyperparameters and returns an SGD optimizer over
// params. lr must be positive; momentum and decay must be non-negative.
func NewSGD(params []tensor.Tensor, lr, momentum, decay float32) (*SGD, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("NewSGD: lr must be positive, got %v", lr)
	}
	if momentum < 0 {
		return nil, fmt.Errorf("NewSGD: momentum must be non-negative, got %v", momentum)
	}
	if decay < 0 {
		return nil, fmt.Errorf("NewSGD: decay must be non-negative, got %v", decay)
	}
	s := &SGD{params: params, lr: lr, momentum: momentum, decay: decay}
	if momentum > 0 {
		s.velocity = make([]tensor.Tensor, len(params))
		for i, p := range params {
			s.velocity[i] = tensor.Zeros(p.Shape(), false)
		}
	}
	return s, nil
}

// MustNewSGD is NewSGD, panicking on invalid hyperparameters — for
// call sites that treat misconfiguration as a programmer error rather
// than something to recover from.
func MustNewSGD(params []tensor.Tensor, lr, momentum, decay float32) *SGD {
	s, err := NewSGD(params, lr, momentum, decay)
	if err != nil {
		panic(err)
	}
	return s
}

// Step applies one update to every tracked parameter using its
// GradNode.Acc. It does not clear Acc — call ZeroGrad between training
// steps to do that explicitly.
func (s *SGD) Step() {
	for i, p := range s.params {
		node := p.GradNode()
		if node == nil || node.Acc.Empty() {
			continue
		}
		g := node.Acc.Data()
		pd := p.Data()
		if s.momentum > 0 {
			vd := s.velocity[i].Data()
			for j := range pd {
				grad := g[j] + s.decay*pd[j]
				vd[j] = s.momentum*vd[j] + grad
				pd[j] -= s.lr * vd[j]
			}
		} else {
			for j := range pd {
				grad := g[j] + s.decay*pd[j]
				pd[j] -= s.lr * grad
			}
		}
	}
	gtlog.Log.Debug().Int("params", len(s.params)).Msg("sgd: step")
}

// ZeroGrad zeros every parameter's accumulated gradient, allocating one
// if the parameter has never been backpropagated through yet.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		node := p.GradNode()
		if node == nil {
			continue
		}
		node.Acc = tensor.Zeros(p.Shape(), false)
	}
	gtlog.Log.Trace().Int("params", len(s.params)).Msg("sgd: zero_grad")
}
