package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3, Clamp(3, 1, 6))
	assert.Equal(1, Clamp(-2, 1, 6))
	assert.Equal(6, Clamp(40, 1, 6))
	assert.Equal(0.5, Clamp(0.5, 0.0, 1.0))
}

func TestGetKeysSorted(t *testing.T) {
	m := map[rune]int{'z': 1, 'a': 2, 'm': 3}
	assert.Equal(t, []rune{'a', 'm', 'z'}, GetKeys(m))
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, Dedupe([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Dedupe([]string{}))
}
