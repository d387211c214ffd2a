package tensor

// OpKind tags which forward operator produced a GradNode. spec.md's
// source dispatches backward special-cases (Matmul, the reductions) by
// comparing an ASCII op-name string; per spec.md §9's REDESIGN FLAG this
// is replaced by a closed enum the autograd engine switches on directly.
type OpKind int

const (
	OpNone OpKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMatmul
	OpSumAll
	OpSumAxis
	OpMeanAll
	OpMeanAxis
	OpMaxAll
	OpMaxAxis
	OpMinAll
	OpMinAxis
	OpLog
	OpExp
	OpSin
	OpCos
	OpTan
	OpRelu
	OpSigmoid
	OpTanh
	OpElu
	OpSelu
	OpMSE
	OpMAE
	OpHuber
	OpCrossEntropy
	OpSoftmaxCrossEntropy
	OpNeg
	OpAbs
	OpSquare
	OpReciprocal
	OpTranspose
	OpUnsqueeze
	OpLinear
)

// IsReduction reports whether op removed an axis from its input shape,
// which the autograd engine needs to know to reinsert a size-1 axis
// before multiplying by the local gradient (spec.md §4.2, "Reduction
// recovery").
func (op OpKind) IsReduction() bool {
	switch op {
	case OpSumAxis, OpMeanAxis, OpMaxAxis, OpMinAxis:
		return true
	default:
		return false
	}
}

func (op OpKind) String() string {
	names := [...]string{
		"None", "Add", "Sub", "Mul", "Div", "Pow", "Matmul",
		"SumAll", "SumAxis", "MeanAll", "MeanAxis",
		"MaxAll", "MaxAxis", "MinAll", "MinAxis",
		"Log", "Exp", "Sin", "Cos", "Tan", "Relu", "Sigmoid", "Tanh", "Elu", "Selu",
		"MSE", "MAE", "Huber", "CrossEntropy", "SoftmaxCrossEntropy",
		"Neg", "Abs", "Square", "Reciprocal", "Transpose", "Unsqueeze", "Linear",
	}
	if int(op) < 0 || int(op) >= len(names) {
		return "Unknown"
	}
	return names[op]
}
