package tables

import (
	"math"
	"sort"
)

// MergeCloseLevels collapses coordinates closer than tolerance into grid
// levels. Values are sorted; a value starts a new level only when it exceeds
// the last accepted level by more than tolerance, otherwise it joins that
// level. Each level is represented by the first value that opened it.
func MergeCloseLevels(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	levels := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-levels[len(levels)-1] > tolerance {
			levels = append(levels, v)
		}
	}
	return levels
}

// FindLevelIndex returns the index of the first level within tolerance of
// value, or -1 if there is none.
func FindLevelIndex(value float64, levels []float64, tolerance float64) int {
	for i, level := range levels {
		if math.Abs(value-level) <= tolerance {
			return i
		}
	}
	return -1
}

// FindEndLevelIndex resolves the closing coordinate of a cell. An end
// coordinate lies on the start of the next level, so a match at level i
// returns i-1. Without a match it returns the greatest level strictly below
// value, or -1 if there is none.
func FindEndLevelIndex(value float64, levels []float64, tolerance float64) int {
	if i := FindLevelIndex(value, levels, tolerance); i >= 0 {
		return i - 1
	}
	idx := -1
	for i, level := range levels {
		if level < value {
			idx = i
		}
	}
	return idx
}
