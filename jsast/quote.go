package jsast

import "encoding/json"

// Quote returns s as a double-quoted JavaScript string literal. JSON string
// syntax is a subset of JavaScript's, and json.Marshal escapes U+2028 and
// U+2029, which older engines reject inside string literals.
func Quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
