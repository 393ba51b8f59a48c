package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"scamscan-engine/metrics"
)

// SPL token program owner of every mint and token account.
const solanaTokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

const solanaTimeout = 4 * time.Second

var solanaCurrency = Currency{Name: "Solana", Symbol: "SOL", Decimals: 9}

type rpcEndpoint struct {
	url    string
	client *rpc.Client
}

// Solana speaks JSON-RPC to one or more Solana nodes.
type Solana struct {
	endpoints []rpcEndpoint
	timeout   time.Duration
}

func NewSolana(urls []string) *Solana {
	hc := newHTTPClient(solanaTimeout)
	s := &Solana{timeout: solanaTimeout}
	for _, u := range urls {
		c, err := rpc.DialOptions(context.Background(), u, rpc.WithHTTPClient(hc))
		if err != nil {
			log.Printf("[Solana] skipping endpoint %s: %v", u, err)
			continue
		}
		s.endpoints = append(s.endpoints, rpcEndpoint{url: u, client: c})
	}
	return s
}

type solanaAccount struct {
	Executable bool            `json:"executable"`
	Owner      string          `json:"owner"`
	Lamports   uint64          `json:"lamports"`
	Data       json.RawMessage `json:"data"`
}

// parsedType returns data.parsed.type for jsonParsed accounts, or "".
func (a solanaAccount) parsedType() string {
	var d struct {
		Parsed struct {
			Type string `json:"type"`
		} `json:"parsed"`
	}
	if err := json.Unmarshal(a.Data, &d); err != nil {
		return ""
	}
	return d.Parsed.Type
}

// Scan implements Connector.
func (s *Solana) Scan(ctx context.Context, address string) []Snapshot {
	snap := Snapshot{
		Network:          "solana",
		Balance:          "0",
		BalanceFormatted: "0",
		Currency:         solanaCurrency,
		Status:           StatusInactive,
		ScamSignals:      []string{},
	}
	failures := 0

	var bal struct {
		Value uint64 `json:"value"`
	}
	if provider, err := s.call(ctx, &bal, "getBalance", address); err != nil {
		failures++
		snap.Notes = append(snap.Notes, "Balance RPC error: "+err.Error())
	} else {
		snap.Provider = provider
		amount := new(big.Int).SetUint64(bal.Value)
		snap.Balance = amount.String()
		snap.BalanceFormatted = FormatUnits(amount, solanaCurrency.Decimals)
		snap.Status = StatusActive
	}

	account, provider, err := s.accountInfo(ctx, address)
	switch {
	case err != nil:
		failures++
		snap.Notes = append(snap.Notes, "AccountInfo RPC error: "+err.Error())
	case account == nil:
		snap.Notes = append(snap.Notes, "Account does not exist on Solana mainnet.")
		if snap.Provider == "" {
			snap.Provider = provider
		}
	default:
		if snap.Provider == "" {
			snap.Provider = provider
		}
		snap.IsContract = account.Executable
		snap.EntityType = entityType(account)
		if snap.EntityType == "mint" {
			snap.IsTokenContract = true
			snap.TokenStandard = "SPL"
		}
		if snap.Status == StatusInactive {
			snap.Status = StatusActive
		}
	}

	var sigs []json.RawMessage
	if _, err := s.call(ctx, &sigs, "getSignaturesForAddress", address, map[string]int{"limit": 10}); err != nil {
		failures++
		snap.Notes = append(snap.Notes, "Signatures RPC error: "+err.Error())
	} else {
		snap.TxCount = len(sigs)
	}

	if failures == 3 {
		return []Snapshot{failedSnapshot("solana", solanaCurrency, errors.New("all Solana RPC calls failed"))}
	}
	return []Snapshot{snap}
}

// Describe implements Describer: program, mint, token-account or wallet.
func (s *Solana) Describe(ctx context.Context, address string) (Entity, error) {
	account, _, err := s.accountInfo(ctx, address)
	if err != nil {
		return Entity{}, err
	}
	if account == nil {
		return Entity{Kind: "wallet", Network: "solana", EntityType: "wallet"}, nil
	}

	e := Entity{Network: "solana", EntityType: entityType(account)}
	switch e.EntityType {
	case "program":
		e.Kind = "contract"
	case "mint":
		e.Kind = "token"
	case "token-account":
		e.Kind = "token-account"
	default:
		e.Kind = "wallet"
	}
	return e, nil
}

func entityType(a *solanaAccount) string {
	switch {
	case a.Executable:
		return "program"
	case a.Owner == solanaTokenProgram && a.parsedType() == "mint":
		return "mint"
	case a.Owner == solanaTokenProgram:
		return "token-account"
	default:
		return "wallet"
	}
}

func (s *Solana) accountInfo(ctx context.Context, address string) (*solanaAccount, string, error) {
	var res struct {
		Value *solanaAccount `json:"value"`
	}
	provider, err := s.call(ctx, &res, "getAccountInfo", address, map[string]string{"encoding": "jsonParsed"})
	if err != nil {
		return nil, "", err
	}
	return res.Value, provider, nil
}

// call tries each endpoint in order. A JSON-RPC error response is final.
func (s *Solana) call(ctx context.Context, out any, method string, args ...any) (string, error) {
	var lastErr error
	for _, ep := range s.endpoints {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := ep.client.CallContext(callCtx, out, method, args...)
		cancel()
		metrics.ObserveProvider("solana", ep.url, err)
		if err == nil {
			return ep.url, nil
		}
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return "", fmt.Errorf("%s: %w", method, err)
		}
		log.Printf("[Solana] %s failed on %s: %v", method, ep.url, err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no endpoints configured")
	}
	return "", fmt.Errorf("%s: %w", method, lastErr)
}
