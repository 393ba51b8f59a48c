package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"scamscan-engine/metrics"
)

var tonCurrency = Currency{Name: "TON", Symbol: "TON", Decimals: 9}

const tonTxLimit = 15

// Code hashes of the standard wallet contracts (v3, v4, highload, multisig).
// An account whose code hash is not listed is treated as a smart contract.
var tonWalletCodeHashes = map[string]bool{
	"857bb3eeb1b9ebce3b3b207db2d0bbd10b191ed257a7b82d49f683e4bd2f8cd0": true,
	"b08b8510cc2f6e0f2f6213b5636e33d7e6443da8932e8def5a0e327c52fa0da1": true,
	"f3e8e3eec1abcb447ded60a1e00c7cd5f9126eb47f55bb2b5f7f7c32a2dfc047": true,
	"7f602a58aab6fa41063f63683bcab9a9a56dd97ab3c4a45e485ace180105d581": true,
	"492459e6f43dc3dfbd2a0d6d683c90e3f1bfa6fe9f6cf2c6938e615cb78f6f91": true,
	"3b85b1ecdcf7192b4f8a82e5b80e6ca0e9b8148f1d626bb8b078d5d927e0c8ed": true,
	"ae32e5b3e2a7b18101e7c0fe8f5a1bdc9b3bf762b0bf61c96f6c2c22fcf04e3a": true,
}

var tonAddressJunk = regexp.MustCompile(`[^A-Za-z0-9_\-:]`)

// TON reads account state from toncenter, falling back to tonapi.
type TON struct {
	client    *http.Client
	toncenter []string
	tonapi    []string
}

func NewTON(toncenter, tonapi []string) *TON {
	return &TON{
		client:    newHTTPClient(8 * time.Second),
		toncenter: toncenter,
		tonapi:    tonapi,
	}
}

type tonState struct {
	Balance  json.RawMessage `json:"balance"`
	Code     string          `json:"code"`
	CodeHash string          `json:"code_hash"`
	State    string          `json:"state"`
	Status   string          `json:"status"`
}

// Scan implements Connector.
func (t *TON) Scan(ctx context.Context, address string) []Snapshot {
	addr := tonAddressJunk.ReplaceAllString(address, "")

	state, provider, err := t.accountState(ctx, addr)
	if err != nil {
		return []Snapshot{failedSnapshot("ton", tonCurrency, err)}
	}

	snap := Snapshot{
		Network:          "ton",
		Provider:         provider,
		Balance:          "0",
		BalanceFormatted: "0",
		Currency:         tonCurrency,
		Status:           normalizeTonStatus(state),
		ScamSignals:      []string{},
		EntityType:       "wallet",
	}

	if amount, ok := parseAmount(state.Balance); ok {
		snap.Balance = amount.String()
		snap.BalanceFormatted = FormatUnits(amount, tonCurrency.Decimals)
	}

	hash := strings.ToLower(strings.TrimSpace(state.CodeHash))
	switch {
	case hash != "" && !tonWalletCodeHashes[hash]:
		snap.IsContract = true
		snap.EntityType = "contract"
		snap.Notes = append(snap.Notes, "Smart-contract detected; full audit not implemented.")
	case hash == "" && len(state.Code) >= 10:
		snap.Notes = append(snap.Notes, "Code hash unavailable; wallet contract not verified.")
	}

	snap.TxCount = t.txCount(ctx, addr)
	return []Snapshot{snap}
}

func (t *TON) accountState(ctx context.Context, addr string) (tonState, string, error) {
	var lastErr error

	for _, base := range t.toncenter {
		var resp struct {
			OK     bool     `json:"ok"`
			Result tonState `json:"result"`
			Error  string   `json:"error"`
		}
		err := getJSON(ctx, t.client, base+"/getAddressInformation?address="+url.QueryEscape(addr), nil, &resp)
		if err == nil && !resp.OK {
			err = fmt.Errorf("toncenter: %s", resp.Error)
		}
		metrics.ObserveProvider("ton", base, err)
		if err == nil {
			return resp.Result, base, nil
		}
		log.Printf("[TON] getAddressInformation failed on %s: %v", base, err)
		lastErr = err
	}

	for _, base := range t.tonapi {
		var st tonState
		err := getJSON(ctx, t.client, base+"/blockchain/accounts/"+url.PathEscape(addr), nil, &st)
		metrics.ObserveProvider("ton", base, err)
		if err == nil {
			return st, base, nil
		}
		log.Printf("[TON] account lookup failed on %s: %v", base, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no endpoints configured")
	}
	return tonState{}, "", fmt.Errorf("all TON providers failed: %w", lastErr)
}

// txCount counts up to tonTxLimit recent transactions. Zero on failure.
func (t *TON) txCount(ctx context.Context, addr string) int {
	for _, base := range t.toncenter {
		var resp struct {
			OK     bool              `json:"ok"`
			Result []json.RawMessage `json:"result"`
		}
		u := fmt.Sprintf("%s/getTransactions?address=%s&limit=%d", base, url.QueryEscape(addr), tonTxLimit)
		if err := getJSON(ctx, t.client, u, nil, &resp); err == nil && resp.OK {
			return len(resp.Result)
		}
	}
	for _, base := range t.tonapi {
		var resp struct {
			Transactions []json.RawMessage `json:"transactions"`
		}
		u := fmt.Sprintf("%s/blockchain/accounts/%s/transactions?limit=%d", base, url.PathEscape(addr), tonTxLimit)
		if err := getJSON(ctx, t.client, u, nil, &resp); err == nil {
			return len(resp.Transactions)
		}
	}
	return 0
}

func normalizeTonStatus(s tonState) string {
	status := strings.ToLower(s.State)
	if status == "" {
		status = strings.ToLower(s.Status)
	}
	switch status {
	case "":
		return StatusUnknown
	case "uninitialized":
		return "uninit"
	default:
		return status
	}
}

// parseAmount accepts a JSON number or a quoted integer string.
func parseAmount(raw json.RawMessage) (*big.Int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}
