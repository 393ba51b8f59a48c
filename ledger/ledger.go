// Package ledger reads balances, activity and contract status from public
// blockchain data providers. Each chain family has one Connector; every
// Connector walks an ordered list of provider endpoints and uses the first
// well-formed answer.
package ledger

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"scamscan-engine/classify"
	"scamscan-engine/config"
)

// Snapshot statuses
const (
	StatusActive   = "active"
	StatusEmpty    = "empty"
	StatusInactive = "inactive"
	StatusUnknown  = "unknown"
)

// Currency describes a chain's native coin.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// TokenMetadata is what could be decoded about a token contract.
type TokenMetadata struct {
	Name                 string `json:"name,omitempty"`
	Symbol               string `json:"symbol,omitempty"`
	Decimals             int    `json:"decimals"`
	TotalSupply          string `json:"totalSupply,omitempty"`
	TotalSupplyFormatted string `json:"totalSupplyFormatted,omitempty"`
}

// Snapshot is the state of one address on one network at request time.
type Snapshot struct {
	Network          string          `json:"network"`
	Provider         string          `json:"provider,omitempty"`
	Balance          string          `json:"balance"`
	BalanceFormatted string          `json:"balanceFormatted"`
	Currency         Currency        `json:"nativeCurrency"`
	TxCount          int             `json:"txCount"`
	Status           string          `json:"status"`
	IsContract       bool            `json:"isContract"`
	IsTokenContract  bool            `json:"isTokenContract"`
	TokenStandard    string          `json:"tokenStandard,omitempty"`
	Token            *TokenMetadata  `json:"tokenMeta,omitempty"`
	Contract         *ContractReport `json:"honeypotCheck,omitempty"`
	EntityType       string          `json:"entityType,omitempty"`
	ScamSignals      []string        `json:"scamSignals"`
	Notes            []string        `json:"notes,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Failed reports whether no provider produced usable data. Partial problems
// are kept in Notes; Error is reserved for total failure.
func (s Snapshot) Failed() bool {
	return s.Error != ""
}

// failedSnapshot is what a connector returns when every provider failed.
func failedSnapshot(network string, cur Currency, err error) Snapshot {
	return Snapshot{
		Network:          network,
		Balance:          "0",
		BalanceFormatted: "0",
		Currency:         cur,
		Status:           StatusUnknown,
		ScamSignals:      []string{},
		Error:            err.Error(),
	}
}

// Connector scans one address on every network of its chain family.
type Connector interface {
	Scan(ctx context.Context, address string) []Snapshot
}

// Entity is the on-chain nature of an address found somewhere else,
// e.g. embedded in a web page.
type Entity struct {
	Kind       string `json:"detectedType"`
	Network    string `json:"detectedChain"`
	EntityType string `json:"entityType,omitempty"`
}

// Describer resolves what an address is without a full scan.
type Describer interface {
	Describe(ctx context.Context, address string) (Entity, error)
}

// Registry maps chain families to their connectors.
type Registry struct {
	connectors map[classify.Family]Connector
	describers map[classify.Family]Describer
}

// NewRegistry builds every connector from configuration.
func NewRegistry(cfg config.Config) *Registry {
	r := &Registry{
		connectors: map[classify.Family]Connector{},
		describers: map[classify.Family]Describer{},
	}

	// Etherscan history only covers mainnet
	var history *Etherscan
	if _, ok := cfg.Network("ethereum"); ok {
		history = NewEtherscan(cfg.EtherscanURL, cfg.EtherscanAPIKey)
	}
	evm := NewEVM(cfg.EVMNetworks, history)
	sol := NewSolana(cfg.SolanaRPC)

	r.Register(classify.FamilyEVM, evm)
	r.Register(classify.FamilySolana, sol)
	r.Register(classify.FamilyTron, NewTron(cfg.TronAPI, cfg.TronAPIKey))
	r.Register(classify.FamilyTON, NewTON(cfg.TonCenter, cfg.TonAPI))
	r.Register(classify.FamilyBitcoin, NewBitcoin(cfg.BitcoinAPI))

	r.describers[classify.FamilyEVM] = evm
	r.describers[classify.FamilySolana] = sol

	return r
}

// Register installs or replaces the connector for a family. A connector
// that also implements Describer is used for entity lookups.
func (r *Registry) Register(f classify.Family, c Connector) {
	if r.connectors == nil {
		r.connectors = map[classify.Family]Connector{}
	}
	if r.describers == nil {
		r.describers = map[classify.Family]Describer{}
	}
	r.connectors[f] = c
	if d, ok := c.(Describer); ok {
		r.describers[f] = d
	}
}

// For returns the connector for a family.
func (r *Registry) For(f classify.Family) (Connector, bool) {
	c, ok := r.connectors[f]
	return c, ok
}

// Describe resolves an address through the family's Describer.
func (r *Registry) Describe(ctx context.Context, f classify.Family, address string) (Entity, bool) {
	d, ok := r.describers[f]
	if !ok {
		return Entity{}, false
	}
	e, err := d.Describe(ctx, address)
	if err != nil {
		return Entity{}, false
	}
	return e, true
}

// FormatUnits renders an integer amount of smallest units as a decimal
// string with at most six fractional digits and no trailing zeros.
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).Truncate(6).String()
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
