package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"scamscan-engine/metrics"
)

// Bitcoin scan signals
const (
	SignalFreshAddress  = "Very fresh address with small historical activity."
	SignalFundsMovedOut = "Zero current balance — all funds moved out."
)

var bitcoinCurrency = Currency{Name: "Bitcoin", Symbol: "BTC", Decimals: 8}

// Bitcoin reads address stats from Esplora-compatible APIs
// (Blockstream, mempool.space).
type Bitcoin struct {
	client *http.Client
	bases  []string
}

func NewBitcoin(bases []string) *Bitcoin {
	return &Bitcoin{client: newHTTPClient(7 * time.Second), bases: bases}
}

type esploraStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int   `json:"tx_count"`
}

type esploraAddress struct {
	ChainStats   esploraStats `json:"chain_stats"`
	MempoolStats esploraStats `json:"mempool_stats"`
}

// Scan implements Connector.
func (b *Bitcoin) Scan(ctx context.Context, address string) []Snapshot {
	data, provider, err := b.fetch(ctx, address)
	if err != nil {
		return []Snapshot{failedSnapshot("bitcoin", bitcoinCurrency, err)}
	}

	funded := data.ChainStats.FundedTxoSum
	spent := data.ChainStats.SpentTxoSum
	balance := big.NewInt(funded - spent)
	txCount := data.ChainStats.TxCount + data.MempoolStats.TxCount

	snap := Snapshot{
		Network:          "bitcoin",
		Provider:         provider,
		Balance:          balance.String(),
		BalanceFormatted: FormatUnits(balance, bitcoinCurrency.Decimals),
		Currency:         bitcoinCurrency,
		TxCount:          txCount,
		Status:           StatusEmpty,
		ScamSignals:      []string{},
		EntityType:       "wallet",
	}
	if txCount == 0 {
		return []Snapshot{snap}
	}

	snap.Status = StatusActive
	if txCount < 5 {
		snap.ScamSignals = append(snap.ScamSignals, SignalFreshAddress)
	}
	if balance.Sign() == 0 {
		snap.ScamSignals = append(snap.ScamSignals, SignalFundsMovedOut)
	}

	snap.Notes = append(snap.Notes, fmt.Sprintf("Total received: %s BTC • Total sent: %s BTC • Net balance: %s BTC",
		FormatUnits(big.NewInt(funded), bitcoinCurrency.Decimals),
		FormatUnits(big.NewInt(spent), bitcoinCurrency.Decimals),
		snap.BalanceFormatted,
	))
	return []Snapshot{snap}
}

func (b *Bitcoin) fetch(ctx context.Context, address string) (esploraAddress, string, error) {
	var lastErr error
	for _, base := range b.bases {
		var data esploraAddress
		err := getJSON(ctx, b.client, base+"/address/"+address, nil, &data)
		if errors.Is(err, errNotFound) {
			// the indexer has never seen the address
			data, err = esploraAddress{}, nil
		}
		metrics.ObserveProvider("bitcoin", base, err)
		if err == nil {
			return data, base, nil
		}
		log.Printf("[BTC] address lookup failed on %s: %v", base, err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no endpoints configured")
	}
	return esploraAddress{}, "", fmt.Errorf("all bitcoin providers failed: %w", lastErr)
}
