// Package content scores the text of a web page for investment-scam
// language and for crypto addresses published on it.
package content

import (
	"context"
	"log"

	"scamscan-engine/classify"
	"scamscan-engine/ledger"
	"scamscan-engine/render"
)

const (
	walletWarning = "Displaying crypto addresses on a website is a common scam indicator."
	fetchWarning  = "Unable to fetch site content for analysis."
)

// Wallet is an address found on a page and what it turned out to be.
type Wallet struct {
	Address       string `json:"address"`
	DetectedKind  string `json:"detectedType"`
	DetectedChain string `json:"detectedChain"`
	EntityType    string `json:"entityType,omitempty"`
}

// Analysis is the content verdict for one page.
type Analysis struct {
	Score          int      `json:"score"`
	Matches        []string `json:"matches"`
	Flags          Flags    `json:"flags"`
	Source         string   `json:"source"`
	Wallets        []Wallet `json:"wallets"`
	RawWallets     []string `json:"rawWallets"`
	Warnings       []string `json:"warnings,omitempty"`
	WalletWarnings []string `json:"walletWarnings"`
}

// Failed reports whether no content could be fetched.
func (a Analysis) Failed() bool {
	return a.Source == render.SourceFailed
}

// Resolver looks up the on-chain nature of an address.
type Resolver interface {
	Describe(ctx context.Context, f classify.Family, address string) (ledger.Entity, bool)
}

// Evaluator scores page text. A nil Resolver leaves addresses classified by
// shape only.
type Evaluator struct {
	resolver Resolver
}

func NewEvaluator(r Resolver) *Evaluator {
	return &Evaluator{resolver: r}
}

// Evaluate scores text. Source is left empty for the caller to fill.
func (e *Evaluator) Evaluate(ctx context.Context, text string) Analysis {
	ts := ScoreText(text)
	a := Analysis{
		Score:          ts.Score,
		Matches:        ts.Matches,
		Flags:          ts.Flags,
		Warnings:       ts.Warnings,
		Wallets:        []Wallet{},
		WalletWarnings: []string{},
	}

	a.RawWallets = ExtractWallets(text, maxWallets)
	deployedContract := false
	for _, addr := range a.RawWallets {
		w := e.describe(ctx, addr)
		if w.DetectedKind == "contract" && (w.DetectedChain == "ethereum" || w.DetectedChain == "bsc") {
			deployedContract = true
		}
		a.Wallets = append(a.Wallets, w)
	}

	if len(a.RawWallets) > 0 {
		a.WalletWarnings = append(a.WalletWarnings, walletWarning)
		a.Score += walletBonus
	}

	if a.Flags.HasInvestmentBuzz && a.Flags.HasYieldPromise {
		floor := floorInvestmentYield
		if deployedContract {
			floor = floorContractInvestmentYield
		}
		a.Score = max(a.Score, floor)
	}
	a.Score = min(a.Score, maxContentScore)
	return a
}

func (e *Evaluator) describe(ctx context.Context, addr string) Wallet {
	family := classify.DetectFamily(addr)
	w := Wallet{Address: addr, DetectedKind: "unknown", DetectedChain: string(family)}
	if family != classify.FamilyUnknown {
		w.DetectedKind = string(classify.KindWallet)
	}
	if e.resolver == nil || (family != classify.FamilyEVM && family != classify.FamilySolana) {
		return w
	}

	ent, ok := e.resolver.Describe(ctx, family, addr)
	if !ok {
		log.Printf("[Content] could not resolve %s on %s", addr, family)
		return w
	}
	w.DetectedKind = ent.Kind
	w.DetectedChain = ent.Network
	w.EntityType = ent.EntityType
	return w
}

// Fetcher returns page content; *render.Pipeline implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (render.Page, error)
}

// Scanner fetches a page and evaluates it.
type Scanner struct {
	fetcher   Fetcher
	evaluator *Evaluator
}

func NewScanner(f Fetcher, e *Evaluator) *Scanner {
	return &Scanner{fetcher: f, evaluator: e}
}

// Analyze never fails: an unfetchable page yields Source "failed" with a
// zero score and an explanatory wallet warning.
func (s *Scanner) Analyze(ctx context.Context, url string) Analysis {
	log.Printf("[Content] starting analysis for %s", url)

	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil || page.Source == render.SourceFailed {
		log.Printf("[Content] fetch failed for %s: %v", url, err)
		return Analysis{
			Matches:        []string{},
			Source:         render.SourceFailed,
			Wallets:        []Wallet{},
			RawWallets:     []string{},
			WalletWarnings: []string{fetchWarning},
		}
	}

	a := s.evaluator.Evaluate(ctx, page.Text)
	a.Source = page.Source
	return a
}
