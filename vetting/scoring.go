package vetting

import (
	"fmt"
	"strings"

	"scamscan-engine/content"
	"scamscan-engine/ledger"
	"scamscan-engine/registration"
)

type Verdict string

const (
	VerdictSafe       Verdict = "SAFE"
	VerdictWarning    Verdict = "WARNING"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictScam       Verdict = "SCAM"
)

const (
	partialContentWarning = "Content analysis was not completed for this URL (DNS / network issues); verdict is based on limited data."
	partialChainWarning   = "On-chain data could not be retrieved for this address; verdict is based on limited data."
	blacklistWarning      = "CRITICAL: Address found in internal SCAM BLACKLIST."
	unknownInputWarning   = "Unknown input type. Cannot analyze."
)

func (v Verdict) rank() int {
	switch v {
	case VerdictScam:
		return 3
	case VerdictSuspicious:
		return 2
	case VerdictWarning:
		return 1
	}
	return 0
}

// Verdict maps a score to its band. A partial analysis is never SAFE.
func (t ScoringThresholds) Verdict(score int, partial bool) Verdict {
	switch {
	case score >= t.Scam:
		return VerdictScam
	case score >= t.Suspicious:
		return VerdictSuspicious
	case partial:
		return VerdictWarning
	default:
		return VerdictSafe
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// warningList keeps warnings unique in first-seen order.
type warningList struct {
	seen  map[string]struct{}
	items []string
}

func (w *warningList) add(msgs ...string) {
	if w.seen == nil {
		w.seen = map[string]struct{}{}
	}
	for _, m := range msgs {
		if m == "" {
			continue
		}
		if _, ok := w.seen[m]; ok {
			continue
		}
		w.seen[m] = struct{}{}
		w.items = append(w.items, m)
	}
}

func (w *warningList) list() []string {
	if w.items == nil {
		return []string{}
	}
	return w.items
}

// URLScore is the combined assessment of a web address.
type URLScore struct {
	Score    int
	Warnings []string
	Partial  bool
}

// CombineURL adds the registration and content scores. The content part is
// partial when the page could not be fetched at all.
func CombineURL(info registration.Info, page content.Analysis) URLScore {
	var w warningList
	w.add(info.Warnings...)
	w.add(page.Warnings...)
	w.add(page.WalletWarnings...)

	return URLScore{
		Score:    clampScore(info.RiskScore + page.Score),
		Warnings: w.list(),
		Partial:  page.Failed(),
	}
}

// AddressScore is the combined assessment of one address across networks.
type AddressScore struct {
	Score    int
	Warnings []string
	Partial  bool
}

// ScoreAddress takes the strongest finding over every network snapshot.
// Warnings are prefixed with the network name. A network without data is
// unknown, not clean, so any failed snapshot makes the result partial.
func ScoreAddress(snaps []ledger.Snapshot, weights AddressWeights) AddressScore {
	var w warningList
	score := 0
	failed := 0

	raise := func(points int) {
		if points > score {
			score = points
		}
	}

	for _, s := range snaps {
		net := s.Network
		if s.Failed() {
			failed++
			w.add(fmt.Sprintf("[%s] On-chain data unavailable: %s", net, s.Error))
			continue
		}

		if s.Contract != nil {
			switch {
			case s.IsContract && s.Contract.IsHoneypot:
				raise(weights.Honeypot)
				w.add(fmt.Sprintf("[%s] DETECTED HONEYPOT CONTRACT!", net))
			case s.IsTokenContract && s.Contract.HasFlag(ledger.FlagTransferSimFailed):
				raise(weights.SimFailed)
				w.add(fmt.Sprintf("[%s] Honeypot simulation failed (beta: potential transfer/sell restrictions).", net))
			}
		}

		if !s.IsContract && s.Status == ledger.StatusActive {
			switch {
			case s.TxCount > 0 && s.TxCount <= freshWalletMaxTx:
				raise(weights.FreshWallet)
				w.add(fmt.Sprintf("[%s] Caution: Very fresh wallet (< 5 transactions).", net))
			case s.TxCount > freshWalletMaxTx && s.TxCount <= youngWalletMaxTx:
				raise(weights.YoungWallet)
			}
		}

		for _, sig := range s.ScamSignals {
			w.add(fmt.Sprintf("[%s] %s", net, sig))
			raise(signalScore(sig, weights.SignalDefault))
		}
	}

	if score == 0 {
		score = weights.Baseline
	}

	return AddressScore{
		Score:    clampScore(score),
		Warnings: w.list(),
		Partial:  failed > 0 || len(snaps) == 0,
	}
}

func signalScore(signal string, fallback int) int {
	s := strings.ToLower(signal)
	for _, rule := range signalRules {
		for _, k := range rule.keywords {
			if strings.Contains(s, k) {
				return rule.score
			}
		}
	}
	return fallback
}
