package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferFIFOEviction(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Add(1)
	rb.Add(2)
	rb.Add(3)
	assert.Equal(t, []float64{1, 2, 3}, rb.Values())

	rb.Add(4)
	assert.Equal(t, 3, rb.Len())
	assert.Equal(t, []float64{2, 3, 4}, rb.Values())
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer(2)
	rb.Add(1)
	rb.Add(2)
	rb.Reset()
	assert.Equal(t, 0, rb.Len())
	assert.Empty(t, rb.Values())

	rb.Add(9)
	assert.Equal(t, []float64{9}, rb.Values())
}
