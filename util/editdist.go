package util

// EditDistance computes the Levenshtein distance between `a` and `b`.
// It works on bytes, which is good enough for ref names.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// WithinDistance checks if the edit distance of `a` and `b`
// is smaller or equal than `max`. It can exit early.
func WithinDistance(a, b string, max int) bool {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}

	if diff > max {
		return false
	}

	return EditDistance(a, b) <= max
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
