package content

import (
	"regexp"
	"strings"
)

const maxWallets = 20

// Unanchored address patterns, loosest last. Overlapping matches are
// resolved by dropping proper substrings.
var walletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`0x[a-fA-F0-9]{40}`),
	regexp.MustCompile(`(bc1[a-zA-Z0-9]{25,39}|[13][a-zA-Z0-9]{25,39})`),
	regexp.MustCompile(`T[1-9A-HJ-NP-Za-km-z]{33}`),
	regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`),
	regexp.MustCompile(`(EQ|UQ)[A-Za-z0-9_-]{46}`),
	regexp.MustCompile(`0:[0-9a-fA-F]{64}`),
}

// ExtractWallets finds address-like strings in text, at most limit of them,
// in first-seen order per pattern. A candidate contained in a longer
// candidate is dropped.
func ExtractWallets(text string, limit int) []string {
	var (
		list []string
		seen = map[string]bool{}
	)
	for _, p := range walletPatterns {
		for _, m := range p.FindAllString(text, -1) {
			if !seen[m] {
				seen[m] = true
				list = append(list, m)
			}
		}
	}

	out := []string{}
	for _, addr := range list {
		if containedInLonger(addr, list) {
			continue
		}
		out = append(out, addr)
		if len(out) == limit {
			break
		}
	}
	return out
}

func containedInLonger(addr string, list []string) bool {
	for _, other := range list {
		if len(other) > len(addr) && strings.Contains(other, addr) {
			return true
		}
	}
	return false
}
