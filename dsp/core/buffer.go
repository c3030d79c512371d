package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// SanitizeInPlace replaces non-finite samples with zero and clamps the rest
// to [-limit, limit]. It returns the number of replaced samples.
func SanitizeInPlace(buf []float64, limit float64) int {
	replaced := 0

	for i, v := range buf {
		switch {
		case !IsFinite(v):
			buf[i] = 0
			replaced++
		case v > limit:
			buf[i] = limit
		case v < -limit:
			buf[i] = -limit
		}
	}

	return replaced
}

// AllFinite reports whether every sample in buf is finite.
func AllFinite(buf []float64) bool {
	for _, v := range buf {
		if !IsFinite(v) {
			return false
		}
	}

	return true
}
