package common

import "fmt"

// ShortenAddress shortens a wallet address for display, keeping length
// characters from each end.
func ShortenAddress(s string, length int) string {
	if len(s) <= length*2 {
		return s
	}

	first := s[:length]
	last := s[len(s)-length:]
	return fmt.Sprintf("%s...%s", first, last)
}
