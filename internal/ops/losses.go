package ops

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/shapes"
	"github.com/itohio/gotensor/internal/tensor"
)

// MSE computes the mean squared error between pred and target, reduced
// to a scalar (spec.md §4.3, loss table: dL/dpred = 2(pred-target)/N).
func MSE(pred, target tensor.Tensor) tensor.Tensor {
	pb, tb := shapes.Broadcast(pred, target)
	n := float32(pb.Size())
	var sum float32
	pd, td := pb.Data(), tb.Data()
	for i := range pd {
		e := pd[i] - td[i]
		sum += e * e
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum / n
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(pb.Shape(), false)
		gd := g.Data()
		sign := float32(1)
		if i == 1 {
			sign = -1
		}
		for j := range gd {
			gd[j] = sign * 2 * (pd[j] - td[j]) / n
		}
		return g
	}
	return track(out, tensor.OpMSE, grad, [4]int32{}, pred, target)
}

// MAE computes the mean absolute error between pred and target, reduced
// to a scalar (dL/dpred = sign(pred-target)/N).
func MAE(pred, target tensor.Tensor) tensor.Tensor {
	pb, tb := shapes.Broadcast(pred, target)
	n := float32(pb.Size())
	var sum float32
	pd, td := pb.Data(), tb.Data()
	for i := range pd {
		sum += math32.Abs(pd[i] - td[i])
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum / n
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(pb.Shape(), false)
		gd := g.Data()
		sign := float32(1)
		if i == 1 {
			sign = -1
		}
		for j := range gd {
			e := pd[j] - td[j]
			switch {
			case e > 0:
				gd[j] = sign / n
			case e < 0:
				gd[j] = -sign / n
			}
		}
		return g
	}
	return track(out, tensor.OpMAE, grad, [4]int32{}, pred, target)
}

// Huber computes the Huber loss with threshold delta, reduced to a
// scalar: 0.5*e^2 for |e|<=delta, delta*(|e|-0.5*delta) otherwise
// (dL/dpred = e/N inside the threshold, delta*sign(e)/N outside).
func Huber(pred, target tensor.Tensor, delta float32) tensor.Tensor {
	if delta <= 0 {
		errs.Domainf("huber: delta must be positive, got %v", delta)
	}
	pb, tb := shapes.Broadcast(pred, target)
	n := float32(pb.Size())
	pd, td := pb.Data(), tb.Data()
	var sum float32
	for i := range pd {
		e := pd[i] - td[i]
		a := math32.Abs(e)
		if a <= delta {
			sum += 0.5 * e * e
		} else {
			sum += delta * (a - 0.5*delta)
		}
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum / n
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(pb.Shape(), false)
		gd := g.Data()
		sign := float32(1)
		if i == 1 {
			sign = -1
		}
		for j := range gd {
			e := pd[j] - td[j]
			if math32.Abs(e) <= delta {
				gd[j] = sign * e / n
			} else if e > 0 {
				gd[j] = sign * delta / n
			} else {
				gd[j] = -sign * delta / n
			}
		}
		return g
	}
	return track(out, tensor.OpHuber, grad, [4]int32{}, pred, target)
}

// CrossEntropy computes -mean(target*log(pred+epsilon)), reduced to a
// scalar (dL/dpred = -target/(pred+epsilon)/N). epsilon guards against
// log(0) when pred is a sharp probability estimate.
func CrossEntropy(pred, target tensor.Tensor, epsilon float32) tensor.Tensor {
	pb, tb := shapes.Broadcast(pred, target)
	n := float32(pb.Size())
	pd, td := pb.Data(), tb.Data()
	var sum float32
	for i := range pd {
		sum -= td[i] * math32.Log(pd[i]+epsilon)
	}
	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = sum / n
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(pb.Shape(), false)
		gd := g.Data()
		if i == 0 {
			for j := range gd {
				gd[j] = -td[j] / (pd[j] + epsilon) / n
			}
		} else {
			for j := range gd {
				gd[j] = -math32.Log(pd[j]+epsilon) / n
			}
		}
		return g
	}
	return track(out, tensor.OpCrossEntropy, grad, [4]int32{}, pred, target)
}

// SoftmaxCrossEntropy fuses softmax with cross-entropy over the last
// axis of logits, avoiding the ill-conditioned 1/y division a separate
// Softmax followed by CrossEntropy would hit (spec.md §4.3). Its
// gradient with respect to logits is (softmax(logits)-target)/N, N
// being the batch size (product of all but the last dimension).
func SoftmaxCrossEntropy(logits, target tensor.Tensor) tensor.Tensor {
	shape := logits.Shape()
	if !shape.Equal(target.Shape()) {
		errs.Shapef("softmax_cross_entropy: logits shape %s does not match target shape %s", shape, target.Shape())
	}
	axis := shape.Rank() - 1
	classes := int(shape[axis])
	rows := logits.Size() / classes

	ld, td := logits.Data(), target.Data()
	softmax := make([]float32, len(ld))
	var total float32
	for r := 0; r < rows; r++ {
		base := r * classes
		max := ld[base]
		for j := 1; j < classes; j++ {
			if ld[base+j] > max {
				max = ld[base+j]
			}
		}
		var sumExp float32
		for j := 0; j < classes; j++ {
			e := math32.Exp(ld[base+j] - max)
			softmax[base+j] = e
			sumExp += e
		}
		lse := max + math32.Log(sumExp)
		var dot float32
		for j := 0; j < classes; j++ {
			softmax[base+j] /= sumExp
			dot += td[base+j] * ld[base+j]
		}
		var targetSum float32
		for j := 0; j < classes; j++ {
			targetSum += td[base+j]
		}
		total += targetSum*lse - dot
	}

	out := tensor.New(shapes.AllShape(), false)
	out.Data()[0] = total / float32(rows)
	grad := func(output tensor.Tensor, i int) tensor.Tensor {
		g := tensor.New(shape, false)
		gd := g.Data()
		n := float32(rows)
		if i == 0 {
			for j := range gd {
				gd[j] = (softmax[j] - td[j]) / n
			}
		}
		return g
	}
	return track(out, tensor.OpSoftmaxCrossEntropy, grad, [4]int32{}, logits, target)
}
