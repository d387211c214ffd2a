package errs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapefPanicsWithTensorError(t *testing.T) {
	defer func() {
		r := recover()
		te, ok := r.(*TensorError)
		assert.True(t, ok)
		assert.Equal(t, CategoryShape, te.Category)
		assert.Contains(t, te.Error(), "shape")
	}()
	Shapef("mismatched shapes %s vs %s", "[2]", "[3]")
	t.Fatal("Shapef did not panic")
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "shape", CategoryShape.String())
	assert.Equal(t, "domain", CategoryDomain.String())
	assert.Equal(t, "autograd misuse", CategoryAutogradMisuse.String())
	assert.Equal(t, "allocation", CategoryAllocation.String())
	assert.Equal(t, "unknown", Category(99).String())
}
