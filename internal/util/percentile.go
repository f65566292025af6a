package util

import (
	"math"
	"sort"
)

// NearestRank returns the p-th nearest-rank percentile (p in (0, 100]) of
// values. values is not mutated; a sorted copy is used. Returns 0 for an
// empty slice.
//
// The nearest-rank index into the sorted copy is max(0, ceil(n*p/100) - 1),
// matching the GLOSSARY definition.
func NearestRank(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := rankIndex(n, p)
	return sorted[idx]
}

// rankIndex computes max(0, ceil(n*p/100) - 1).
func rankIndex(n int, p float64) int {
	idx := int(math.Ceil(float64(n)*p/100)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// NearestRanks computes NearestRank for each of ps against the same sorted
// copy of values, avoiding a re-sort per percentile.
func NearestRanks(values []float64, ps []float64) map[float64]float64 {
	n := len(values)
	result := make(map[float64]float64, len(ps))
	if n == 0 {
		for _, p := range ps {
			result[p] = 0
		}
		return result
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	for _, p := range ps {
		result[p] = sorted[rankIndex(n, p)]
	}
	return result
}
