// Package tensor implements gotensor's dense rank-≤4 float32 tensor,
// the implicit autograd tape node (GradNode) it may carry, and the
// eval-mode (no-grad) scope stack. It is the data model spec.md §3
// describes; the operator library and autograd engine that build and
// walk the tape live in sibling packages.
package tensor

import (
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/arena"
	"github.com/itohio/gotensor/internal/errs"
)

// GradFn computes the local partial derivative of a GradNode's forward
// output with respect to its i-th input, evaluated at forward-time
// values (spec.md §3, GradNode.grad_fn).
type GradFn func(output Tensor, inputIdx int) Tensor

// GradNode is the implicit tape node every tracked forward operator
// attaches to its output (spec.md §3).
type GradNode struct {
	Acc       Tensor // accumulated_grad; Acc.Empty() means "not yet set"
	Value     Tensor // the forward output this node was attached to, passed to GradFn as its output argument
	GradFn    GradFn
	Inputs    [4]Tensor
	NumInputs int
	Op        OpKind
	Params    [4]int32
}

// Tensor is a shape plus a reference to a flat row-major float32 buffer,
// plus an optional GradNode. Copying a Tensor value copies the header;
// the buffer and, if present, the GradNode are shared (spec.md §9,
// "tangled ownership").
type Tensor struct {
	shape Shape
	data  []float32
	grad  *GradNode
}

// evalStack is the process-wide eval-mode scope stack (spec.md §3,
// "Eval mode"). A non-empty stack means tracked operators must produce
// untracked outputs regardless of input tracking.
var evalStack []struct{}

// BeginEval pushes a no-grad frame.
func BeginEval() { evalStack = append(evalStack, struct{}{}) }

// EndEval pops a no-grad frame. Popping an empty stack is a no-op — it
// cannot corrupt tracking state, only fail to suppress it.
func EndEval() {
	if len(evalStack) == 0 {
		return
	}
	evalStack = evalStack[:len(evalStack)-1]
}

// EvalActive reports whether a no-grad scope is currently active.
func EvalActive() bool { return len(evalStack) > 0 }

// New allocates an uninitialized (zero-filled) tensor of the given
// shape from the active pool. Per spec.md §9's REDESIGN FLAG, gotensor
// never silently fills a fresh buffer with noise the way the cTensor
// source does — callers who want random values call NewRandom.
func New(shape Shape, trackGrad bool) Tensor {
	data := arena.AllocFloat32(shape.Size())
	t := Tensor{shape: shape, data: data}
	if trackGrad {
		t.grad = &GradNode{}
	}
	return t
}

// NewRandom allocates a tensor filled with independent Uniform(lo, hi)
// draws. rng may be nil to use the default top-level math/rand/v2
// source.
func NewRandom(shape Shape, lo, hi float32, trackGrad bool, rng *rand.Rand) Tensor {
	t := New(shape, trackGrad)
	span := hi - lo
	for i := range t.data {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			u = rand.Float64()
		}
		t.data[i] = lo + float32(u)*span
	}
	return t
}

// Zeros allocates a tensor of the given shape filled with zeros.
func Zeros(shape Shape, trackGrad bool) Tensor { return New(shape, trackGrad) }

// Ones allocates a tensor of the given shape filled with ones.
func Ones(shape Shape, trackGrad bool) Tensor {
	t := New(shape, trackGrad)
	for i := range t.data {
		t.data[i] = 1
	}
	return t
}

// Full allocates a tensor of the given shape filled with value.
func Full(shape Shape, value float32, trackGrad bool) Tensor {
	t := New(shape, trackGrad)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// FromSlice builds a tensor over an existing backing slice (copied into
// the active pool so the arena still owns it).
func FromSlice(shape Shape, data []float32, trackGrad bool) Tensor {
	if len(data) < shape.Size() {
		errs.Shapef("FromSlice: data length %d is less than shape size %d", len(data), shape.Size())
	}
	t := New(shape, trackGrad)
	copy(t.data, data)
	return t
}

// GlorotUniform allocates a weight tensor initialized with Xavier/Glorot
// uniform bounds: limit = sqrt(6 / (fanIn + fanOut)) (spec.md §6).
func GlorotUniform(shape Shape, fanIn, fanOut int, trackGrad bool, rng *rand.Rand) Tensor {
	limit := math32.Sqrt(6.0 / float32(fanIn+fanOut))
	return NewRandom(shape, -limit, limit, trackGrad, rng)
}

// Empty reports whether t carries no buffer (the GradNode.Acc "not yet
// accumulated" sentinel, or a zero-value Tensor).
func (t Tensor) Empty() bool { return t.data == nil }

// Shape returns the tensor's shape.
func (t Tensor) Shape() Shape { return t.shape }

// Rank returns the number of dimensions.
func (t Tensor) Rank() int { return t.shape.Rank() }

// Size returns the total element count.
func (t Tensor) Size() int { return t.shape.Size() }

// Data returns the tensor's flat row-major backing slice. Mutating it
// mutates every Tensor value that shares this buffer.
func (t Tensor) Data() []float32 { return t.data }

// GradNode returns the tensor's tape node, or nil if the tensor is not
// tracked.
func (t Tensor) GradNode() *GradNode { return t.grad }

// IsTracked reports whether the tensor participates in autograd.
func (t Tensor) IsTracked() bool { return t.grad != nil }

// ID returns an identifier unique to this tensor's backing buffer,
// useful for detecting aliasing (e.g. the Detach property test).
func (t Tensor) ID() uintptr {
	if len(t.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&t.data[0]))
}

// WithGradNode returns a copy of t carrying the given GradNode. Used by
// the operator library to attach a freshly-built tape node to a forward
// output (spec.md §4.3 step 5).
func (t Tensor) WithGradNode(g *GradNode) Tensor {
	t.grad = g
	return t
}

// Detach returns an alias of t (same buffer) with no GradNode.
func (t Tensor) Detach() Tensor {
	return Tensor{shape: t.shape, data: t.data}
}

// ReshapeView returns an alias of t (same buffer, no copy) under
// newShape. Valid only when newShape's element count equals t's and the
// reinterpretation preserves row-major ordering — e.g. dropping or
// inserting size-1 axes, which is exactly what shape recovery needs.
func ReshapeView(t Tensor, newShape Shape) Tensor {
	if newShape.Size() != t.Size() {
		errs.Shapef("ReshapeView: element count mismatch, %d vs %d", newShape.Size(), t.Size())
	}
	return Tensor{shape: newShape, data: t.data}
}

// linearIndex computes the flat row-major offset for the given
// multi-dimensional indices.
func (t Tensor) linearIndex(indices []int) int {
	rank := t.shape.Rank()
	if len(indices) == 1 && rank != 1 {
		return indices[0]
	}
	if len(indices) != rank {
		errs.Domainf("At/SetAt: expected %d indices, got %d", rank, len(indices))
	}
	strides := t.shape.Strides()
	idx := 0
	for i, v := range indices {
		if v < 0 || v >= int(t.shape[i]) {
			errs.Domainf("At/SetAt: index %d out of range for dimension %d (size %d)", v, i, t.shape[i])
		}
		idx += v * strides[i]
	}
	return idx
}

// At returns the element at the given multi-dimensional indices. A
// single index against a higher-rank tensor is treated as a linear
// index into the flat buffer.
func (t Tensor) At(indices ...int) float32 {
	return t.data[t.linearIndex(indices)]
}

// SetAt sets the element at the given multi-dimensional indices.
func (t Tensor) SetAt(value float32, indices ...int) {
	t.data[t.linearIndex(indices)] = value
}

// Release is a no-op: buffers are reclaimed in bulk by arena.Free on
// their owning pool, never individually. It is kept only so call
// sites that mirror the teacher's Core.Release() contract compile and
// read naturally.
func (t Tensor) Release() {}

// String renders a human-readable dump of the tensor (spec.md §6,
// "print").
func (t Tensor) String() string {
	return t.shape.String() + " " + fmt.Sprint(t.data)
}
