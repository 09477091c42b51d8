// Package utils holds small query-parameter helpers shared by handlers.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
// No trimming is applied, so " 42" yields def.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// IntInRange parses s like AtoiDefault and clamps the result to [lo, hi].
//
//	utils.IntInRange("100", 10, 1, 50) // 50
//	utils.IntInRange("", 10, 1, 50)    // 10
func IntInRange(s string, def, lo, hi int) int {
	n := AtoiDefault(s, def)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
