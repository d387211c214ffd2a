// Package gotensor is a small reverse-mode automatic differentiation
// library over dense float32 tensors: an implicit tape built from
// forward operator calls, region-based allocation instead of per-tensor
// frees, and the handful of operators and optimizers a minimal neural
// network needs. This file is the package's public facade — thin
// re-exports of the internal/* packages that do the actual work, the
// way the teacher's own x/math/tensor/tensor.go re-exports its
// eager_tensor/types packages.
package gotensor

import (
	"math/rand/v2"

	"github.com/itohio/gotensor/internal/arena"
	"github.com/itohio/gotensor/internal/autograd"
	"github.com/itohio/gotensor/internal/ops"
	"github.com/itohio/gotensor/internal/optim"
	"github.com/itohio/gotensor/internal/tensor"
)

// Tensor is gotensor's dense rank-≤4 float32 array, optionally carrying
// an autograd tape node.
type Tensor = tensor.Tensor

// Shape is a tensor's dimension sequence.
type Shape = tensor.Shape

// MaxDims is the maximum rank gotensor supports.
const MaxDims = tensor.MaxDims

// NewShape builds a Shape from dimensions.
func NewShape(dims ...int32) Shape { return tensor.NewShape(dims...) }

// NewShapeInts builds a Shape from plain ints.
func NewShapeInts(dims ...int) Shape { return tensor.NewShapeInts(dims...) }

// New allocates a zero-filled tensor from the active pool.
func New(shape Shape, trackGrad bool) Tensor { return tensor.New(shape, trackGrad) }

// NewRandom allocates a tensor of independent Uniform(lo, hi) draws. rng
// may be nil to use the default top-level random source.
func NewRandom(shape Shape, lo, hi float32, trackGrad bool, rng *rand.Rand) Tensor {
	return tensor.NewRandom(shape, lo, hi, trackGrad, rng)
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape Shape, trackGrad bool) Tensor { return tensor.Zeros(shape, trackGrad) }

// Ones allocates a one-filled tensor.
func Ones(shape Shape, trackGrad bool) Tensor { return tensor.Ones(shape, trackGrad) }

// Full allocates a tensor filled with value.
func Full(shape Shape, value float32, trackGrad bool) Tensor {
	return tensor.Full(shape, value, trackGrad)
}

// FromSlice builds a tensor over a copy of an existing backing slice.
func FromSlice(shape Shape, data []float32, trackGrad bool) Tensor {
	return tensor.FromSlice(shape, data, trackGrad)
}

// GlorotUniform allocates a weight tensor with Xavier/Glorot uniform
// bounds: limit = sqrt(6 / (fanIn + fanOut)).
func GlorotUniform(shape Shape, fanIn, fanOut int, trackGrad bool, rng *rand.Rand) Tensor {
	return tensor.GlorotUniform(shape, fanIn, fanOut, trackGrad, rng)
}

// Detach returns an alias of t (sharing its buffer) severed from the
// autograd graph.
func Detach(t Tensor) Tensor { return ops.Detach(t) }

// BeginEval pushes a no-grad scope: operators built inside it never
// attach a GradNode regardless of their inputs' tracking state.
func BeginEval() { tensor.BeginEval() }

// EndEval pops a no-grad scope (a no-op if none is active).
func EndEval() { tensor.EndEval() }

// EvalActive reports whether a no-grad scope is currently active.
func EvalActive() bool { return tensor.EvalActive() }

// Backward runs reverse-mode differentiation from root, seeding its
// gradient with upstream.
func Backward(root, upstream Tensor) { autograd.Backward(root, upstream) }

// Grad runs reverse-mode differentiation from root, seeding its
// gradient with ones — the common scalar-loss entry point.
func Grad(root Tensor) { autograd.Grad(root) }

// GradOf returns t's accumulated gradient after a Backward/Grad call,
// or a zero-filled tensor if t was never reached.
func GradOf(t Tensor) Tensor {
	node := t.GradNode()
	if node == nil || node.Acc.Empty() {
		return tensor.Zeros(t.Shape(), false)
	}
	return node.Acc
}

// Initialize starts the pool allocator. Call once before any tensor is
// allocated.
func Initialize() { arena.Initialize() }

// Finalize tears down the pool allocator.
func Finalize() { arena.Finalize() }

// BeginMalloc pushes a named pool; subsequent allocations are charged to
// it until the matching EndMalloc.
func BeginMalloc(id int64) { arena.BeginMalloc(id) }

// EndMalloc pops the active pool.
func EndMalloc() { arena.EndMalloc() }

// Free releases every buffer charged to pool id in one O(1) operation.
func Free(id int64) { arena.Free(id) }

// Elementwise binary operators.
var (
	Add = ops.Add
	Sub = ops.Sub
	Mul = ops.Mul
	Div = ops.Div
	Pow = ops.Pow
)

// MatMul computes C = A·B.
var MatMul = ops.MatMul

// Reductions.
var (
	SumAll   = ops.SumAll
	SumAxis  = ops.SumAxis
	MeanAll  = ops.MeanAll
	MeanAxis = ops.MeanAxis
	MaxAll   = ops.MaxAll
	MaxAxis  = ops.MaxAxis
	MinAll   = ops.MinAll
	MinAxis  = ops.MinAxis
)

// Activations.
var (
	Log     = ops.Log
	Exp     = ops.Exp
	Sin     = ops.Sin
	Cos     = ops.Cos
	Tan     = ops.Tan
	Relu    = ops.Relu
	Sigmoid = ops.Sigmoid
	Tanh    = ops.Tanh
	Elu     = ops.Elu
	Selu    = ops.Selu
	Softmax = ops.Softmax
)

// Losses.
var (
	MSE                 = ops.MSE
	MAE                 = ops.MAE
	Huber               = ops.Huber
	CrossEntropy        = ops.CrossEntropy
	SoftmaxCrossEntropy = ops.SoftmaxCrossEntropy
)

// Unary operators and the fused affine transform.
var (
	Neg          = ops.Neg
	Abs          = ops.Abs
	Square       = ops.Square
	Reciprocal   = ops.Reciprocal
	Transpose    = ops.Transpose
	Unsqueeze    = ops.Unsqueeze
	Linear       = ops.Linear
	RawMatmul    = ops.RawMatmul
	RawTranspose = ops.RawTranspose
)

// Optimizers. SGD, AdaGrad, RMSProp and Adam each track a set of
// tensors and update them in place from their accumulated gradients;
// ZeroGrad clears those gradients between training steps.
type (
	SGD     = optim.SGD
	AdaGrad = optim.AdaGrad
	RMSProp = optim.RMSProp
	Adam    = optim.Adam
)

// NewSGD builds an SGD optimizer over params.
func NewSGD(params []Tensor, lr, momentum, decay float32) (*SGD, error) {
	return optim.NewSGD(params, lr, momentum, decay)
}

// MustNewSGD is NewSGD, panicking on invalid hyperparameters.
func MustNewSGD(params []Tensor, lr, momentum, decay float32) *SGD {
	return optim.MustNewSGD(params, lr, momentum, decay)
}

// NewAdaGrad builds an AdaGrad optimizer over params.
func NewAdaGrad(params []Tensor, lr, eps float32) (*AdaGrad, error) {
	return optim.NewAdaGrad(params, lr, eps)
}

// MustNewAdaGrad is NewAdaGrad, panicking on invalid hyperparameters.
func MustNewAdaGrad(params []Tensor, lr, eps float32) *AdaGrad {
	return optim.MustNewAdaGrad(params, lr, eps)
}

// NewRMSProp builds an RMSProp optimizer over params.
func NewRMSProp(params []Tensor, lr, decay, eps float32) (*RMSProp, error) {
	return optim.NewRMSProp(params, lr, decay, eps)
}

// MustNewRMSProp is NewRMSProp, panicking on invalid hyperparameters.
func MustNewRMSProp(params []Tensor, lr, decay, eps float32) *RMSProp {
	return optim.MustNewRMSProp(params, lr, decay, eps)
}

// NewAdam builds an Adam optimizer over params.
func NewAdam(params []Tensor, lr, beta1, beta2, eps float32) (*Adam, error) {
	return optim.NewAdam(params, lr, beta1, beta2, eps)
}

// MustNewAdam is NewAdam, panicking on invalid hyperparameters.
func MustNewAdam(params []Tensor, lr, beta1, beta2, eps float32) *Adam {
	return optim.MustNewAdam(params, lr, beta1, beta2, eps)
}

// Gradient clipping variants.
var (
	ClipByNorm  = optim.ClipByNorm
	ClipByValue = optim.ClipByValue
	ClipByRange = optim.ClipByRange
	ClipBySign  = optim.ClipBySign
)
