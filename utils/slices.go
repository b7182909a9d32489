package utils

// StringInSlice returns whether the given string is in the string slice.
func StringInSlice(s string, a []string) bool {
	for _, entry := range a {
		if entry == s {
			return true
		}
	}
	return false
}

// DuplicateStrings returns a new copy of the given string slice.
func DuplicateStrings(a []string) []string {
	b := make([]string, len(a))
	copy(b, a)
	return b
}
