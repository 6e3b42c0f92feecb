package versioned

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMembers_Basics(t *testing.T) {
	s := Of("b", "a", "b")
	assert.Len(t, s, 2)
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))

	s.Union(Of("c"))
	s.Subtract(Of("a"))
	assert.Equal(t, []string{"b", "c"}, Sorted(s))
}

func TestSorted_EmptyIsNonNil(t *testing.T) {
	var s Members[string]
	got := Sorted(s)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
