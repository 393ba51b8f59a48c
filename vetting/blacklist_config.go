package vetting

import (
	"log"
	"strings"

	"scamscan-engine/config"
)

const whitelistSource = "global-url-whitelist"

// Policy holds the static lists that override computed scores. Overrides
// only ever lower severity, except the address blacklist which short-circuits
// before any scan.
type Policy struct {
	blacklist  map[string]struct{}
	whitelist  map[string]struct{}
	demoHost   string
	demoPrefix string
}

func NewPolicy(cfg config.Config) Policy {
	return Policy{
		blacklist:  cfg.Blacklist,
		whitelist:  cfg.Whitelist,
		demoHost:   strings.ToLower(cfg.DemoHost),
		demoPrefix: cfg.DemoPathPrefix,
	}
}

// IsBlacklisted matches addresses case-insensitively.
func (p Policy) IsBlacklisted(address string) bool {
	_, ok := p.blacklist[strings.ToLower(strings.TrimSpace(address))]
	return ok
}

// IsWhitelisted matches hosts exactly; subdomains are not covered.
func (p Policy) IsWhitelisted(host string) bool {
	_, ok := p.whitelist[host]
	return ok
}

func (p Policy) isDemo(host, path string) bool {
	return p.demoHost != "" && p.demoPrefix != "" &&
		host == p.demoHost && strings.HasPrefix(path, p.demoPrefix)
}

// applyURLOverrides runs the demo override, or failing that the whitelist
// override, on a finished URL result. Warnings are kept as they are.
func (p Policy) applyURLOverrides(res *Result) {
	host, path := SplitURL(res.Input)
	if host == "" {
		return
	}

	if p.isDemo(host, path) {
		log.Printf("[Overrides] demo URL %s: capping at %d", res.Input, overrideCap)
		if res.Details.Content != nil {
			res.Details.Content.Score = overrideCap
		}
		res.RiskScore = min(res.RiskScore, overrideCap)
		if res.Verdict.rank() > VerdictWarning.rank() {
			res.Verdict = VerdictWarning
		}
		return
	}

	if !p.IsWhitelisted(host) {
		return
	}

	log.Printf("[Overrides] %s is whitelisted", host)
	res.WhitelistedDomain = host
	res.Details.Whitelist = &WhitelistMatch{Domain: host, Source: whitelistSource}
	if res.Details.Content != nil {
		res.Details.Content.Score = min(res.Details.Content.Score, overrideCap)
	}
	res.RiskScore = min(res.RiskScore, overrideCap)
	if res.Verdict == VerdictScam {
		res.Verdict = VerdictWarning
	}
}
