package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scamscan-engine/metrics"
)

// SignalDepositOnly is raised for addresses that only ever received funds.
const SignalDepositOnly = "Wallet has only incoming transactions (possible deposit-only)."

// Etherscan reads Ethereum transaction history from the Etherscan v2 API.
type Etherscan struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewEtherscan returns nil when no API key is configured.
func NewEtherscan(baseURL, apiKey string) *Etherscan {
	if apiKey == "" {
		return nil
	}
	return &Etherscan{
		client:  newHTTPClient(6 * time.Second),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// EtherscanTx is the part of an Etherscan transaction the engine reads.
type EtherscanTx struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TxList returns the mainnet transaction list, newest first.
func (e *Etherscan) TxList(ctx context.Context, address string) ([]EtherscanTx, error) {
	q := url.Values{}
	q.Set("chainid", "1")
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "desc")
	q.Set("apikey", e.apiKey)

	var resp struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	err := getJSON(ctx, e.client, e.baseURL+"?"+q.Encode(), nil, &resp)
	metrics.ObserveProvider("evm", e.baseURL, err)
	if err != nil {
		return nil, err
	}

	if resp.Status != "1" {
		if strings.EqualFold(resp.Message, "No transactions found") {
			return []EtherscanTx{}, nil
		}
		var detail string
		_ = json.Unmarshal(resp.Result, &detail)
		return nil, fmt.Errorf("etherscan: %s %s", resp.Message, detail)
	}

	var txs []EtherscanTx
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("etherscan: parsing tx list: %w", err)
	}
	return txs, nil
}

// analyzeHistory counts transactions and flags deposit-only wallets.
func analyzeHistory(txs []EtherscanTx, address string) (int, []string) {
	addr := strings.ToLower(address)
	incoming, outgoing := 0, 0
	for _, tx := range txs {
		if strings.ToLower(tx.To) == addr {
			incoming++
		}
		if strings.ToLower(tx.From) == addr {
			outgoing++
		}
	}

	var signals []string
	if incoming > 0 && outgoing == 0 {
		signals = append(signals, SignalDepositOnly)
	}
	return len(txs), signals
}
