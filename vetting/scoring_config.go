package vetting

// ScoringThresholds defines the verdict bands on the 0-100 risk scale
type ScoringThresholds struct {
	Scam       int `json:"scam"`       // Default: 75
	Suspicious int `json:"suspicious"` // Default: 40
	// Safe: below Suspicious
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		Scam:       75,
		Suspicious: 40,
	}
}

// AddressWeights are the points an on-chain finding is worth. Address scores
// take the maximum finding, they are not summed.
type AddressWeights struct {
	Honeypot      int `json:"honeypot"`       // Default: 100
	SimFailed     int `json:"sim_failed"`     // Default: 60
	FreshWallet   int `json:"fresh_wallet"`   // Default: 35 (1-5 tx)
	YoungWallet   int `json:"young_wallet"`   // Default: 10 (6-19 tx)
	Baseline      int `json:"baseline"`       // Default: 10, replaces a zero score
	SignalDefault int `json:"signal_default"` // Default: 20
}

// DefaultAddressWeights returns default weights
func DefaultAddressWeights() AddressWeights {
	return AddressWeights{
		Honeypot:      100,
		SimFailed:     60,
		FreshWallet:   35,
		YoungWallet:   10,
		Baseline:      10,
		SignalDefault: 20,
	}
}

// Transaction-count bands for non-contract addresses
const (
	freshWalletMaxTx = 5
	youngWalletMaxTx = 19
)

// signalRules map connector scam signals to points. The first rule with a
// matching keyword wins; unmatched signals score SignalDefault.
var signalRules = []struct {
	keywords []string
	score    int
}{
	{[]string{"less than 24h", "created today"}, 65},
	{[]string{"fresh"}, 40},
	{[]string{"zero current balance", "all funds moved out"}, 50},
}

// overrideCap is the highest score a whitelisted or demo URL may keep.
const overrideCap = 60
