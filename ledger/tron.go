package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"scamscan-engine/metrics"
)

var tronCurrency = Currency{Name: "TRON", Symbol: "TRX", Decimals: 6}

// Tron reads accounts and contracts from TronGrid-compatible REST APIs.
type Tron struct {
	client *http.Client
	bases  []string
	apiKey string
}

func NewTron(bases []string, apiKey string) *Tron {
	return &Tron{
		client: newHTTPClient(5 * time.Second),
		bases:  bases,
		apiKey: apiKey,
	}
}

type tronAccount struct {
	Type    string `json:"type"`
	Balance int64  `json:"balance"`
}

type tronContract struct {
	Type string `json:"type"`
	ABI  struct {
		Entrys []struct {
			Type string `json:"type"`
			Name string `json:"name"`
		} `json:"entrys"`
	} `json:"abi"`
}

// isTRC20 checks the ABI for the core TRC20 methods.
func (c tronContract) isTRC20() bool {
	names := map[string]bool{}
	for _, e := range c.ABI.Entrys {
		if strings.EqualFold(e.Type, "function") && e.Name != "" {
			names[strings.ToLower(e.Name)] = true
		}
	}
	return names["totalsupply"] && names["balanceof"] && names["transfer"]
}

type tronTokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

func (t *Tron) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if t.apiKey != "" {
		h["TRON-PRO-API-KEY"] = t.apiKey
	}
	return h
}

// Scan implements Connector. The provider that answers the account lookup
// serves the rest of the scan.
func (t *Tron) Scan(ctx context.Context, address string) []Snapshot {
	var (
		base    string
		account *tronAccount
		lastErr error
	)
	for _, b := range t.bases {
		acc, err := t.fetchAccount(ctx, b, address)
		metrics.ObserveProvider("tron", b, err)
		if err == nil {
			base, account = b, acc
			break
		}
		log.Printf("[Tron] account lookup failed on %s: %v", b, err)
		lastErr = err
	}
	if base == "" {
		if lastErr == nil {
			lastErr = errors.New("no endpoints configured")
		}
		return []Snapshot{failedSnapshot("tron", tronCurrency, fmt.Errorf("tron account: %w", lastErr))}
	}

	snap := Snapshot{
		Network:          "tron",
		Provider:         base,
		Balance:          "0",
		BalanceFormatted: "0",
		Currency:         tronCurrency,
		Status:           StatusInactive,
		ScamSignals:      []string{},
		EntityType:       "wallet",
	}

	if account == nil {
		snap.Notes = append(snap.Notes, "Account does not exist on TRON mainnet.")
	} else {
		snap.Status = StatusActive
		amount := big.NewInt(account.Balance)
		snap.Balance = amount.String()
		snap.BalanceFormatted = FormatUnits(amount, tronCurrency.Decimals)
		if strings.EqualFold(account.Type, "contract") {
			snap.IsContract = true
		}
	}

	// Contract metadata is checked even when the account type is not
	// "Contract"; TronGrid does not always report it.
	if contract, err := t.fetchContract(ctx, base, address); err != nil {
		snap.Notes = append(snap.Notes, "Contract meta error: "+err.Error())
	} else if contract != nil {
		snap.IsContract = true
		if contract.isTRC20() {
			snap.IsTokenContract = true
			snap.TokenStandard = "TRC20"
		}
	}

	if info, found, err := t.fetchTokenInfo(ctx, base, address); err != nil {
		snap.Notes = append(snap.Notes, "TRC20 detect error: "+err.Error())
	} else if found {
		snap.IsTokenContract = true
		snap.TokenStandard = "TRC20"
		if info != nil {
			snap.Token = &TokenMetadata{Name: info.Name, Symbol: info.Symbol, Decimals: info.Decimals}
		}
	}

	if count, err := t.fetchTxCount(ctx, base, address); err == nil {
		snap.TxCount = count
	}

	if snap.IsContract {
		snap.EntityType = "contract"
	}
	return []Snapshot{snap}
}

func (t *Tron) fetchAccount(ctx context.Context, base, address string) (*tronAccount, error) {
	var resp struct {
		Data []tronAccount `json:"data"`
	}
	err := getJSON(ctx, t.client, base+"/v1/accounts/"+address, t.headers(), &resp)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (t *Tron) fetchContract(ctx context.Context, base, address string) (*tronContract, error) {
	var resp struct {
		Data []tronContract `json:"data"`
	}
	err := getJSON(ctx, t.client, base+"/v1/contracts/"+address, t.headers(), &resp)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// fetchTokenInfo reports found=true when TronGrid lists TRC20 data for the
// contract; info is nil when no token_info block came with it.
func (t *Tron) fetchTokenInfo(ctx context.Context, base, address string) (*tronTokenInfo, bool, error) {
	var resp struct {
		Data []struct {
			TokenInfo *tronTokenInfo `json:"token_info"`
		} `json:"data"`
	}
	err := getJSON(ctx, t.client, base+"/v1/contracts/"+address+"/tokens", t.headers(), &resp)
	if errors.Is(err, errNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(resp.Data) == 0 {
		return nil, false, nil
	}
	return resp.Data[0].TokenInfo, true, nil
}

func (t *Tron) fetchTxCount(ctx context.Context, base, address string) (int, error) {
	var resp struct {
		Data []struct{} `json:"data"`
	}
	url := base + "/v1/accounts/" + address + "/transactions?limit=20&only_confirmed=true"
	if err := getJSON(ctx, t.client, url, t.headers(), &resp); err != nil {
		return 0, err
	}
	return len(resp.Data), nil
}
