// Package classify decides what kind of thing a raw query string is and, for
// blockchain addresses, which chain family it belongs to.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the shape of an input.
type Kind string

const (
	KindURL      Kind = "url"
	KindWallet   Kind = "wallet"
	KindContract Kind = "contract"
	KindIP       Kind = "ip"
	KindUnknown  Kind = "unknown"
)

// Family is a chain family. Only addresses carry one.
type Family string

const (
	FamilyEVM     Family = "evm"
	FamilySolana  Family = "solana"
	FamilyTron    Family = "tron"
	FamilyTON     Family = "ton"
	FamilyBitcoin Family = "bitcoin"
	FamilyUnknown Family = "unknown"
)

// Input is a classified query value.
type Input struct {
	Raw    string `json:"raw"`
	Kind   Kind   `json:"kind"`
	Family Family `json:"family"`
}

// IsAddress reports whether the input was recognised as a blockchain address.
func (in Input) IsAddress() bool {
	return in.Family != FamilyUnknown
}

type rule struct {
	family   Family
	patterns []*regexp.Regexp
}

var ipPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// Order matters: Bitcoin legacy addresses are valid base58 of Solana length,
// so Bitcoin must be tested first.
var rules = []rule{
	{FamilyEVM, []*regexp.Regexp{regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)}},
	{FamilyTron, []*regexp.Regexp{regexp.MustCompile(`^T[A-Za-z0-9]{33}$`)}},
	{FamilyTON, []*regexp.Regexp{
		regexp.MustCompile(`^[a-zA-Z0-9_-]{48}$`),
		regexp.MustCompile(`^EQ[a-zA-Z0-9_-]{46}$`),
	}},
	{FamilyBitcoin, []*regexp.Regexp{
		regexp.MustCompile(`^(1|3)[a-km-zA-HJ-NP-Z1-9]{25,34}$`),
		regexp.MustCompile(`^bc1[a-zA-Z0-9]{39,59}$`),
	}},
	{FamilySolana, []*regexp.Regexp{regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)}},
}

// Classify is total: every string maps to exactly one Input.
func Classify(value string) Input {
	v := strings.TrimSpace(value)
	in := Input{Raw: v, Kind: KindUnknown, Family: FamilyUnknown}

	if v == "" {
		return in
	}
	if ipPattern.MatchString(v) {
		in.Kind = KindIP
		return in
	}
	if f := DetectFamily(v); f != FamilyUnknown {
		in.Kind = KindWallet
		in.Family = f
		return in
	}

	in.Kind = KindURL
	return in
}

// DetectFamily returns the chain family of an address, or FamilyUnknown.
func DetectFamily(value string) Family {
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(value) {
				return r.family
			}
		}
	}
	return FamilyUnknown
}

// ParseKind validates the inbound type parameter. An empty value and "auto"
// both mean "classify it yourself" and yield KindUnknown.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return KindUnknown, nil
	case "url", "domain":
		return KindURL, nil
	case "wallet":
		return KindWallet, nil
	case "contract":
		return KindContract, nil
	case "ip":
		return KindIP, nil
	default:
		return KindUnknown, fmt.Errorf("unsupported type %q", raw)
	}
}

// Resolve classifies value, honouring an explicit kind from the caller.
// The family is always derived from the value itself.
func Resolve(value string, explicit Kind) Input {
	in := Classify(value)
	if explicit == KindUnknown || in.Raw == "" {
		return in
	}
	in.Kind = explicit
	return in
}
