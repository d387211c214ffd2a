// Package autograd walks the implicit tape GradNode builds up (spec.md
// §4.4): a reverse topological traversal that accumulates gradients into
// each node's GradNode.Acc, applying the chain rule through every
// tracked operator's GradFn — special-casing Matmul, Transpose and
// Unsqueeze, whose backward is a shape transformation rather than an
// elementwise local derivative.
package autograd

import (
	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/gtlog"
	"github.com/itohio/gotensor/internal/ops"
	"github.com/itohio/gotensor/internal/shapes"
	"github.com/itohio/gotensor/internal/tensor"
)

// Backward runs reverse-mode differentiation from root, seeding its
// GradNode.Acc with upstream (pass a tensor of ones shaped like root,
// e.g. from Grad, for the common scalar-loss case). Every ancestor
// tracked tensor ends up with its GradNode.Acc populated; read it back
// via t.GradNode().Acc (spec.md §4.4). An untracked root is a no-op.
func Backward(root tensor.Tensor, upstream tensor.Tensor) {
	if !root.IsTracked() {
		return
	}
	if !upstream.Shape().Equal(root.Shape()) {
		errs.Shapef("Backward: upstream shape %s does not match root shape %s", upstream.Shape(), root.Shape())
	}

	order := topoOrder(root)
	gtlog.Log.Debug().Int("nodes", len(order)).Msg("autograd: backward")
	accumulate(root.GradNode(), upstream)

	for _, t := range order {
		node := t.GradNode()
		if node.Acc.Empty() {
			continue // unreachable from root along any contributing path
		}
		gtlog.Log.Trace().Str("op", node.Op.String()).Msg("autograd: propagate")
		propagate(node)
	}
}

// Grad seeds Backward with a ones tensor of root's shape, the common
// case of starting backpropagation from a scalar loss (spec.md §4.4,
// "dL/dL = 1").
func Grad(root tensor.Tensor) {
	Backward(root, tensor.Ones(root.Shape(), false))
}

// topoOrder returns every tracked tensor reachable from root (root
// included) ordered so that root comes first and every tensor precedes
// all tensors it was derived from — i.e. a node's GradNode.Acc receives
// every contribution from its consumers before the node itself is
// propagated further.
func topoOrder(root tensor.Tensor) []tensor.Tensor {
	visited := map[*tensor.GradNode]bool{}
	var post []tensor.Tensor

	var visit func(t tensor.Tensor)
	visit = func(t tensor.Tensor) {
		if !t.IsTracked() {
			return
		}
		node := t.GradNode()
		if visited[node] {
			return
		}
		visited[node] = true
		for i := 0; i < node.NumInputs; i++ {
			visit(node.Inputs[i])
		}
		post = append(post, t)
	}
	visit(root)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// accumulate adds contribution into node.Acc, treating an empty Acc as
// "not yet set" rather than zero (spec.md §3, GradNode.accumulated_grad).
func accumulate(node *tensor.GradNode, contribution tensor.Tensor) {
	if node.Acc.Empty() {
		acc := tensor.New(contribution.Shape(), false)
		copy(acc.Data(), contribution.Data())
		node.Acc = acc
		return
	}
	node.Acc = ops.Add(node.Acc, contribution)
}

// propagate computes each input's contribution from node's fully
// accumulated gradient and routes it onward.
func propagate(node *tensor.GradNode) {
	upstream := node.Acc

	switch node.Op {
	case tensor.OpMatmul:
		propagateMatmul(node, upstream)
		return
	case tensor.OpTranspose:
		a1, a2 := int(node.Params[0]), int(node.Params[1])
		grad := ops.RawTranspose(upstream, a1, a2)
		contribute(node.Inputs[0], grad)
		return
	case tensor.OpUnsqueeze:
		axis := int(node.Params[0])
		grad := tensor.ReshapeView(upstream, upstream.Shape().WithoutAxis(axis))
		contribute(node.Inputs[0], grad)
		return
	}

	for i := 0; i < node.NumInputs; i++ {
		in := node.Inputs[i]
		if !in.IsTracked() {
			continue
		}
		if node.GradFn == nil {
			errs.Autogradf("autograd: op %s has no grad_fn and is not special-cased", node.Op)
		}
		// GradFn needs the node's own forward output, which is the
		// tensor the consumer holds as its Input[i] — that tensor IS
		// this node's forward result, so we pass it back as "output".
		local := node.GradFn(node.Value, i)

		ups := upstream
		if node.Op.IsReduction() {
			ups = shapes.RecoverReduction(ups, int(node.Params[0]))
		}
		a, b := shapes.Broadcast(ups, local)
		combined := ops.Mul(a, b)
		contribution := shapes.RecoverBroadcast(combined, in.Shape())
		contribute(in, contribution)
	}
}

// contribute routes a computed gradient into in's GradNode.Acc.
func contribute(in tensor.Tensor, grad tensor.Tensor) {
	if !in.IsTracked() {
		return
	}
	accumulate(in.GradNode(), grad)
}

// propagateMatmul special-cases C = A·B: grad_A = upstream·B^T,
// grad_B = A^T·upstream, summed over any batch dimensions B did not
// have (spec.md §4.3, "Matrix multiplication").
func propagateMatmul(node *tensor.GradNode, upstream tensor.Tensor) {
	a, b := node.Inputs[0], node.Inputs[1]
	if a.IsTracked() {
		bt := ops.RawTranspose(b, b.Rank()-2, b.Rank()-1)
		grad := ops.RawMatmul(upstream, bt)
		contribute(a, grad)
	}
	if b.IsTracked() {
		at := ops.RawTranspose(a, a.Rank()-2, a.Rank()-1)
		grad := ops.RawMatmul(at, upstream)
		if grad.Rank() > b.Rank() {
			grad = sumLeadingBatch(grad, grad.Rank()-b.Rank())
		}
		contribute(b, grad)
	}
}

// sumLeadingBatch collapses the first n leading batch axes of t by
// summation, used when B (the matmul right operand) was rank-2 and
// broadcast across A's batch dimensions.
func sumLeadingBatch(t tensor.Tensor, n int) tensor.Tensor {
	for i := 0; i < n; i++ {
		t = dropLeadingAxis(t)
	}
	return t
}

func dropLeadingAxis(t tensor.Tensor) tensor.Tensor {
	shape := t.Shape()
	outShape := shape.WithoutAxis(0)
	out := tensor.New(outShape, false)
	data := t.Data()
	dst := out.Data()
	batch := int(shape[0])
	inner := outShape.Size()
	for i := 0; i < batch; i++ {
		base := i * inner
		for j := 0; j < inner; j++ {
			dst[j] += data[base+j]
		}
	}
	return out
}
