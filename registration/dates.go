package registration

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Date layouts seen in RDAP events and WHOIS responses.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	time.RFC1123,
	time.RFC1123Z,
	time.UnixDate,
	"Mon Jan 2 15:04:05 2006",
}

// ParseDate converts whatever a registry returned into an instant.
// Numbers are epoch seconds, or milliseconds above 1e12. For a list, the
// first numeric element wins, otherwise the first element is used.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case []any:
		for _, e := range x {
			if isNumeric(e) {
				return ParseDate(e)
			}
		}
		if len(x) > 0 {
			return ParseDate(x[0])
		}
		return time.Time{}, false
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return ParseDate(items)
	case float64:
		return fromEpoch(x)
	case int64:
		return fromEpoch(float64(x))
	case int:
		return fromEpoch(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return parseDateString(x)
	}
	return time.Time{}, false
}

func isNumeric(v any) bool {
	switch x := v.(type) {
	case float64, int64, int, json.Number:
		return true
	case string:
		return digitsOnly.MatchString(strings.TrimSpace(x))
	}
	return false
}

func fromEpoch(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	ms := n
	if n <= 1e12 {
		ms = n * 1000
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if digitsOnly.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(n)
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func datePtr(v any) *time.Time {
	t, ok := ParseDate(v)
	if !ok {
		return nil
	}
	return &t
}
