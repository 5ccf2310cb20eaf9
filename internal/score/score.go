// Package score sums named heuristic contributions into a bounded confidence.
package score

// Contribution is one independently testable term of a confidence score.
type Contribution[T any] struct {
	Name  string
	Value func(T) float64
}

// Sum adds base and every contribution evaluated on in, clamped to [0,1].
func Sum[T any](base float64, in T, contribs []Contribution[T]) float64 {
	total := base
	for _, c := range contribs {
		total += c.Value(in)
	}
	return Clamp01(total)
}

// Breakdown returns each contribution's value keyed by name.
func Breakdown[T any](in T, contribs []Contribution[T]) map[string]float64 {
	out := make(map[string]float64, len(contribs))
	for _, c := range contribs {
		out[c.Name] = c.Value(in)
	}
	return out
}

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Capped returns per*hits limited to max.
func Capped(hits int, per, max float64) float64 {
	v := float64(hits) * per
	if v > max {
		return max
	}
	return v
}
