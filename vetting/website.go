package vetting

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeURL makes a fetchable URL out of a bare host or host/path.
func NormalizeURL(raw string) string {
	v := strings.TrimSpace(raw)
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	return v
}

// SplitURL returns the lower-cased ASCII host and the path of a URL or bare
// host. Internationalised names are converted to punycode so they compare
// equal to whitelist entries.
func SplitURL(raw string) (host, path string) {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return "", ""
	}

	host = strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host, u.Path
}
