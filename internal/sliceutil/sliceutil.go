package sliceutil

// Dedupe returns the elements of ts in their original order, keeping only the
// first element for each key.
func Dedupe[T any, K comparable](ts []T, key func(T) K) []T {
	out := make([]T, 0, len(ts))
	seen := make(map[K]struct{}, len(ts))
	for _, t := range ts {
		k := key(t)
		if _, found := seen[k]; found {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}

	return out
}

// Map applies fn to every element of ts.
func Map[T, S any](ts []T, fn func(T) S) []S {
	out := make([]S, 0, len(ts))
	for _, t := range ts {
		out = append(out, fn(t))
	}
	return out
}
