package common

// MapEqual reports whether the two maps hold exactly the same key-value pairs.
func MapEqual[K, V comparable](left, right map[K]V) bool {
	if len(left) != len(right) {
		return false
	}
	for k, v := range left {
		if rv, ok := right[k]; !ok || rv != v {
			return false
		}
	}
	return true
}

// CloneMap returns a shallow copy of the given map. A nil map clones to nil.
func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	cloned := make(map[K]V, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}
