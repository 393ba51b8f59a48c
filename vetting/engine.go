// Package vetting combines registration, content and on-chain findings into a
// single scam verdict and serves it over HTTP.
package vetting

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"scamscan-engine/classify"
	"scamscan-engine/config"
	"scamscan-engine/content"
	"scamscan-engine/ledger"
	"scamscan-engine/metrics"
	"scamscan-engine/registration"
)

// ErrInvalidInput is returned when there is nothing to check.
var ErrInvalidInput = errors.New("missing 'value' parameter")

// Registrar estimates domain age.
type Registrar interface {
	Lookup(ctx context.Context, domain string) registration.Info
}

// PageScanner fetches and scores a web page.
type PageScanner interface {
	Analyze(ctx context.Context, url string) content.Analysis
}

// Ledgers hands out the connector for a chain family.
type Ledgers interface {
	For(f classify.Family) (ledger.Connector, bool)
}

// OnChain is the raw on-chain evidence behind an address verdict.
type OnChain struct {
	Provider string            `json:"provider"`
	Type     string            `json:"type"`
	Networks []ledger.Snapshot `json:"networks"`
}

// WhitelistMatch records which whitelist entry capped a URL result.
type WhitelistMatch struct {
	Domain string `json:"domain"`
	Source string `json:"source"`
}

type Details struct {
	Whois     *registration.Info `json:"whois,omitempty"`
	Content   *content.Analysis  `json:"content,omitempty"`
	Chain     classify.Family    `json:"chain,omitempty"`
	OnChain   *OnChain           `json:"onChain,omitempty"`
	Whitelist *WhitelistMatch    `json:"whitelist,omitempty"`
}

// Result is the answer to one check.
type Result struct {
	Input             string        `json:"input"`
	Type              classify.Kind `json:"type"`
	RiskScore         int           `json:"riskScore"`
	Verdict           Verdict       `json:"verdict"`
	Warnings          []string      `json:"warnings"`
	Details           Details       `json:"details"`
	WhitelistedDomain string        `json:"whitelistedDomain,omitempty"`
}

// Engine runs checks. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	registrar  Registrar
	scanner    PageScanner
	ledgers    Ledgers
	policy     Policy
	thresholds ScoringThresholds
	weights    AddressWeights
	timeout    time.Duration
}

func NewEngine(cfg config.Config, r Registrar, s PageScanner, l Ledgers) *Engine {
	return &Engine{
		registrar:  r,
		scanner:    s,
		ledgers:    l,
		policy:     NewPolicy(cfg),
		thresholds: DefaultScoringThresholds(),
		weights:    DefaultAddressWeights(),
		timeout:    cfg.RequestTimeout,
	}
}

// Check classifies value (honouring an explicit kind unless it is
// KindUnknown) and runs the matching analysis. Provider failures never
// surface as errors; they lower confidence instead.
func (e *Engine) Check(ctx context.Context, kind classify.Kind, value string) (Result, error) {
	if strings.TrimSpace(value) == "" {
		return Result{}, ErrInvalidInput
	}

	started := time.Now()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	in := classify.Resolve(value, kind)
	log.Printf("[Check] %s classified as %s (family=%s)", in.Raw, in.Kind, in.Family)

	var res Result
	switch in.Kind {
	case classify.KindURL:
		res = e.checkURL(ctx, in)
	case classify.KindWallet, classify.KindContract:
		res = e.checkAddress(ctx, in)
	default:
		res = e.unknown(in)
	}

	metrics.ObserveCheck(string(res.Type), string(res.Verdict), started)
	log.Printf("[Check] %s done: score=%d verdict=%s in %s", in.Raw, res.RiskScore, res.Verdict, time.Since(started).Round(time.Millisecond))
	return res, nil
}

func (e *Engine) checkURL(ctx context.Context, in classify.Input) Result {
	var info registration.Info
	var page content.Analysis

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info = e.registrar.Lookup(gctx, registration.RegistrableDomain(in.Raw))
		return nil
	})

	g.Go(func() error {
		page = e.scanner.Analyze(gctx, NormalizeURL(in.Raw))
		return nil
	})

	_ = g.Wait()

	combined := CombineURL(info, page)
	res := Result{
		Input:     in.Raw,
		Type:      in.Kind,
		RiskScore: combined.Score,
		Verdict:   e.thresholds.Verdict(combined.Score, combined.Partial),
		Warnings:  combined.Warnings,
		Details:   Details{Whois: &info, Content: &page},
	}
	if combined.Partial {
		res.Warnings = appendUnique(res.Warnings, partialContentWarning)
	}

	e.policy.applyURLOverrides(&res)
	return res
}

func (e *Engine) checkAddress(ctx context.Context, in classify.Input) Result {
	res := Result{
		Input:    in.Raw,
		Type:     in.Kind,
		Warnings: []string{},
		Details:  Details{Chain: in.Family},
	}

	if !in.IsAddress() {
		return e.unknown(in)
	}

	if e.policy.IsBlacklisted(in.Raw) {
		log.Printf("[Check] %s is blacklisted", in.Raw)
		res.RiskScore = 100
		res.Verdict = e.thresholds.Verdict(100, false)
		res.Warnings = []string{blacklistWarning}
		return res
	}

	conn, ok := e.ledgers.For(in.Family)
	if !ok {
		return e.unknown(in)
	}

	snaps := conn.Scan(ctx, in.Raw)
	scored := ScoreAddress(snaps, e.weights)

	res.RiskScore = scored.Score
	res.Verdict = e.thresholds.Verdict(scored.Score, scored.Partial)
	res.Warnings = scored.Warnings
	if scored.Partial {
		res.Warnings = appendUnique(res.Warnings, partialChainWarning)
	}
	res.Details.OnChain = &OnChain{
		Provider: providerOf(snaps, in.Family),
		Type:     entityOf(snaps),
		Networks: snaps,
	}
	return res
}

func (e *Engine) unknown(in classify.Input) Result {
	return Result{
		Input:    in.Raw,
		Type:     in.Kind,
		Verdict:  VerdictSafe,
		Warnings: []string{unknownInputWarning},
	}
}

// providerOf names the data source of a scan: the first provider that
// answered, or the family itself when none did.
func providerOf(snaps []ledger.Snapshot, f classify.Family) string {
	for _, s := range snaps {
		if s.Provider != "" {
			return s.Provider
		}
	}
	return string(f)
}

func entityOf(snaps []ledger.Snapshot) string {
	for _, s := range snaps {
		if s.IsContract {
			return "contract"
		}
	}
	return "wallet"
}

func appendUnique(list []string, msg string) []string {
	for _, m := range list {
		if m == msg {
			return list
		}
	}
	return append(list, msg)
}
