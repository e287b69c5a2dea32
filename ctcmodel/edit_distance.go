package ctcmodel

import "math"

// EditDistance computes the mean normalized edit distance
// between decoded labelings and reference labelings.
//
// Each distance is divided by the length of its
// reference.
// An empty reference gives 0 for an empty hypothesis and
// +Inf otherwise.
func EditDistance(decoded, reference [][]int) float64 {
	if len(reference) == 0 {
		return 0
	}
	var sum float64
	for i, ref := range reference {
		var hyp []int
		if i < len(decoded) {
			hyp = decoded[i]
		}
		dist := levenshtein(hyp, ref)
		if len(ref) == 0 {
			if dist > 0 {
				sum += math.Inf(1)
			}
			continue
		}
		sum += float64(dist) / float64(len(ref))
	}
	return sum / float64(len(reference))
}

func levenshtein(a, b []int) int {
	if len(a) == 0 {
		return len(b)
	} else if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
