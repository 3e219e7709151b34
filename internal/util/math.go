package util

// MinDay returns the smaller of two day counts.
func MinDay(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// MaxDay returns the larger of two day counts.
func MaxDay(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
