package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextCompletionRankMonotonic(t *testing.T) {
	first := NextCompletionRank()
	second := NextCompletionRank()
	assert.Greater(t, second, first)
}

func TestNextCompletionRankUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- NextCompletionRank()
		}()
	}
	wg.Wait()
	close(seen)

	ranks := make(map[int64]bool, n)
	for r := range seen {
		assert.False(t, ranks[r], "rank %d issued twice", r)
		ranks[r] = true
	}
	assert.Len(t, ranks, n)
}
