package util

// HasPrefix reports whether s begins with prefix. It performs a plain slice
// comparison without allocations, which keeps cache key scans cheap. An empty
// prefix always matches.
func HasPrefix(s, prefix string) bool {
	lp := len(prefix)
	if lp == 0 {
		return true
	}
	if len(s) < lp {
		return false
	}
	return s[:lp] == prefix
}

// HasAnyPrefix reports whether s begins with any of the provided prefixes,
// checking in order and short-circuiting on the first match. With no prefixes
// it returns false.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// TrimPrefixIf returns s with prefix removed when present, and whether the
// prefix was removed. An empty prefix returns s unchanged and true.
func TrimPrefixIf(s, prefix string) (string, bool) {
	lp := len(prefix)
	if lp == 0 {
		return s, true
	}
	if len(s) < lp {
		return s, false
	}
	if s[:lp] == prefix {
		return s[lp:], true
	}
	return s, false
}
