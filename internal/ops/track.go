// Package ops is gotensor's operator library: forward kernels paired
// with local-gradient functions (spec.md §4.3). Every tracked operator
// here follows the same five steps: check eval mode, broadcast operands,
// allocate the output from the active pool, run the forward kernel, and
// — if tracked — attach a fresh GradNode naming its grad_fn, inputs and
// op kind.
package ops

import "github.com/itohio/gotensor/internal/tensor"

// anyTracked reports whether at least one of ins participates in
// autograd.
func anyTracked(ins ...tensor.Tensor) bool {
	for _, t := range ins {
		if t.IsTracked() {
			return true
		}
	}
	return false
}

// track attaches a GradNode to out when autograd should record this
// operation: an eval frame is not active, and at least one input is
// tracked. Otherwise out is returned unmodified (spec.md §4.3 step 1/5).
func track(out tensor.Tensor, op tensor.OpKind, fn tensor.GradFn, params [4]int32, ins ...tensor.Tensor) tensor.Tensor {
	if tensor.EvalActive() || !anyTracked(ins...) {
		return out
	}
	node := &tensor.GradNode{
		GradFn: fn,
		Op:     op,
		Params: params,
		Value:  out,
	}
	node.NumInputs = len(ins)
	for i, in := range ins {
		if i >= 4 {
			break
		}
		node.Inputs[i] = in
	}
	return out.WithGradNode(node)
}
