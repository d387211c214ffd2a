// Package errs defines gotensor's fatal-error taxonomy.
//
// gotensor has no recoverable error path through the tensor/autograd
// core: a shape violation, a domain violation, autograd misuse or an
// allocation failure are all precondition failures that leave no useful
// partial state, so they panic with a *TensorError rather than
// returning an error. Callers that want a recoverable check of optimizer
// hyperparameters use the New... constructors in internal/optim instead,
// which return plain errors; internal/arena has no error-returning API.
package errs

import (
	"fmt"

	"github.com/itohio/gotensor/internal/gtlog"
)

// Category classifies why a TensorError was raised.
type Category int

const (
	// CategoryShape covers mismatched shapes, incompatible broadcasts,
	// and matmul rank/contracting-dimension violations.
	CategoryShape Category = iota
	// CategoryDomain covers reducing an empty tensor, out-of-range axes,
	// and invalid optimizer hyperparameters.
	CategoryDomain
	// CategoryAutogradMisuse covers reaching, during Backward, a tracked
	// node whose op has no GradFn and no special-cased backward. A
	// non-scalar root is not an error: Grad seeds it with ones.
	CategoryAutogradMisuse
	// CategoryAllocation covers pool allocator failures (stack overflow,
	// out of memory).
	CategoryAllocation
)

func (c Category) String() string {
	switch c {
	case CategoryShape:
		return "shape"
	case CategoryDomain:
		return "domain"
	case CategoryAutogradMisuse:
		return "autograd misuse"
	case CategoryAllocation:
		return "allocation"
	default:
		return "unknown"
	}
}

// TensorError is the value panicked for every fatal precondition failure
// in the gotensor core.
type TensorError struct {
	Category Category
	Message  string
}

func (e *TensorError) Error() string {
	return fmt.Sprintf("gotensor: %s: %s", e.Category, e.Message)
}

// New builds a *TensorError with a formatted message.
func New(cat Category, format string, args ...any) *TensorError {
	return &TensorError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Panic raises a fatal TensorError. It is the single call site every
// precondition check in the core funnels through.
func Panic(cat Category, format string, args ...any) {
	err := New(cat, format, args...)
	gtlog.Log.Error().Str("category", cat.String()).Msg(err.Message)
	panic(err)
}

// Shapef panics with CategoryShape.
func Shapef(format string, args ...any) { Panic(CategoryShape, format, args...) }

// Domainf panics with CategoryDomain.
func Domainf(format string, args ...any) { Panic(CategoryDomain, format, args...) }

// Autogradf panics with CategoryAutogradMisuse.
func Autogradf(format string, args ...any) { Panic(CategoryAutogradMisuse, format, args...) }

// Allocf panics with CategoryAllocation.
func Allocf(format string, args ...any) { Panic(CategoryAllocation, format, args...) }
