// Package slug derives URL slugs from display names.
package slug

import "strings"

// Make lowercases s, replaces every run of characters outside [a-z0-9]
// with a single hyphen and trims hyphens from both ends.
//
//	Make("Summer Linen — 2024!") == "summer-linen-2024"
func Make(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteByte(c)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Or returns Make(explicit) when it is non-empty, else Make(name).
func Or(explicit, name string) string {
	if s := Make(explicit); s != "" {
		return s
	}
	return Make(name)
}
