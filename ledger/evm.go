package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"

	"scamscan-engine/config"
	"scamscan-engine/metrics"
)

const evmTimeout = 10 * time.Second

type evmEndpoint struct {
	url    string
	client *ethclient.Client
}

type evmNetwork struct {
	name      string
	currency  Currency
	endpoints []evmEndpoint
	timeout   time.Duration
}

// EVM scans an address on every configured EVM network concurrently.
type EVM struct {
	networks  []*evmNetwork
	inspector *Inspector
	etherscan *Etherscan
}

// NewEVM dials every endpoint lazily. Endpoints with an unparseable URL are
// dropped with a log line. etherscan may be nil.
func NewEVM(networks []config.EVMNetwork, etherscan *Etherscan) *EVM {
	hc := newHTTPClient(evmTimeout)
	e := &EVM{etherscan: etherscan}

	for _, n := range networks {
		net := &evmNetwork{
			name:     n.Name,
			currency: Currency{Name: n.CurrencyName, Symbol: n.Symbol, Decimals: n.Decimals},
			timeout:  evmTimeout,
		}
		for _, url := range n.Endpoints {
			c, err := rpc.DialOptions(context.Background(), url, rpc.WithHTTPClient(hc))
			if err != nil {
				log.Printf("[EVM] skipping %s endpoint %s: %v", n.Name, url, err)
				continue
			}
			net.endpoints = append(net.endpoints, evmEndpoint{url: url, client: ethclient.NewClient(c)})
		}
		e.networks = append(e.networks, net)
	}

	e.inspector = &Inspector{networks: map[string]*evmNetwork{}}
	for _, n := range e.networks {
		e.inspector.networks[n.name] = n
	}
	return e
}

// Scan implements Connector. One snapshot per network, in configuration order.
func (e *EVM) Scan(ctx context.Context, address string) []Snapshot {
	out := make([]Snapshot, len(e.networks))

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range e.networks {
		i, n := i, n
		g.Go(func() error {
			out[i] = e.scanNetwork(gctx, n, address)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *EVM) scanNetwork(ctx context.Context, n *evmNetwork, address string) Snapshot {
	addr := common.HexToAddress(address)
	snap := Snapshot{
		Network:     n.name,
		Currency:    n.currency,
		ScamSignals: []string{},
	}

	if n.name == "ethereum" && e.etherscan != nil {
		txs, err := e.etherscan.TxList(ctx, address)
		if err != nil {
			log.Printf("[EVM] etherscan history unavailable for %s: %v", address, err)
		} else {
			count, signals := analyzeHistory(txs, address)
			snap.TxCount = count
			snap.ScamSignals = append(snap.ScamSignals, signals...)
		}
	}

	balance, provider, err := attempt(ctx, n, "eth_getBalance", func(ctx context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.BalanceAt(ctx, addr, nil)
	})
	if err != nil {
		return failedSnapshot(n.name, n.currency, err)
	}
	snap.Provider = provider
	snap.Balance = balance.String()
	snap.BalanceFormatted = FormatUnits(balance, n.currency.Decimals)

	if snap.TxCount == 0 {
		nonce, _, err := attempt(ctx, n, "eth_getTransactionCount", func(ctx context.Context, c *ethclient.Client) (uint64, error) {
			return c.NonceAt(ctx, addr, nil)
		})
		if err != nil {
			return failedSnapshot(n.name, n.currency, err)
		}
		snap.TxCount = int(nonce)
	}

	if snap.TxCount == 0 && balance.Sign() == 0 {
		snap.Status = StatusEmpty
		return snap
	}
	snap.Status = StatusActive

	report := e.inspector.Inspect(ctx, n.name, address)
	if report.IsContract {
		snap.IsContract = true
		snap.Contract = &report
		snap.EntityType = "contract"
		if report.Token != nil {
			snap.IsTokenContract = true
			snap.TokenStandard = "ERC20"
			snap.Token = report.Token
		}
	} else {
		snap.EntityType = "wallet"
		if len(report.Flags) > 0 {
			snap.Notes = append(snap.Notes, "Contract check failed: "+strings.Join(report.Flags, ", "))
		}
	}

	return snap
}

// Describe implements Describer: the first network where the address holds
// bytecode makes it a contract; otherwise the first network that answered
// makes it a wallet.
func (e *EVM) Describe(ctx context.Context, address string) (Entity, error) {
	addr := common.HexToAddress(address)
	var walletOn string

	for _, n := range e.networks {
		code, _, err := attempt(ctx, n, "eth_getCode", func(ctx context.Context, c *ethclient.Client) ([]byte, error) {
			return c.CodeAt(ctx, addr, nil)
		})
		if err != nil {
			continue
		}
		if !isEmptyCode(code) {
			return Entity{Kind: "contract", Network: n.name, EntityType: "contract"}, nil
		}
		if walletOn == "" {
			walletOn = n.name
		}
	}

	if walletOn == "" {
		return Entity{}, errors.New("no EVM network answered")
	}
	return Entity{Kind: "wallet", Network: walletOn, EntityType: "wallet"}, nil
}

// attempt runs fn against each endpoint in order and returns the first
// success together with the endpoint URL.
func attempt[T any](ctx context.Context, n *evmNetwork, method string, fn func(context.Context, *ethclient.Client) (T, error)) (T, string, error) {
	var zero T
	var lastErr error

	for _, ep := range n.endpoints {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		callCtx, cancel := context.WithTimeout(ctx, n.timeout)
		v, err := fn(callCtx, ep.client)
		cancel()
		metrics.ObserveProvider("evm", ep.url, err)
		if err == nil {
			return v, ep.url, nil
		}
		log.Printf("[EVM] %s %s failed on %s: %v", n.name, method, ep.url, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no endpoints configured")
	}
	return zero, "", fmt.Errorf("all %s providers failed for %s: %w", n.name, method, lastErr)
}

// isEmptyCode treats "0x", "0x0" and all-zero code as no contract.
func isEmptyCode(code []byte) bool {
	for _, b := range code {
		if b != 0 {
			return false
		}
	}
	return true
}
