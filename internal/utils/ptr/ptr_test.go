package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/peacekeeping/internal/utils/ptr"
)

func TestTo(t *testing.T) {
	p := ptr.To("France")
	assert.Equal(t, "France", *p)

	n := ptr.To(2025)
	assert.Equal(t, 2025, *n)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", ptr.Value[string](nil))
	assert.Equal(t, 0, ptr.Value[int](nil))
	assert.Equal(t, "Chad", ptr.Value(ptr.To("Chad")))
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, ptr.NonEmpty(""))
	assert.Equal(t, " ", *ptr.NonEmpty(" "))
	assert.Equal(t, "Mali", *ptr.NonEmpty("Mali"))
}
