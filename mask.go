package headinject

import "strings"

// MaskToken hides a credential for logs and events, keeping the last 4
// characters: pub0123456789abcdef -> ***************cdef.
// Values of 4 characters or fewer are fully masked.
func MaskToken(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
