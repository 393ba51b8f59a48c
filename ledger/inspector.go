package ledger

import (
	"context"
	"errors"
	"log"
	"math/big"
	"regexp"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// Contract inspection flags
const (
	FlagNotStandardERC20  = "NOT_STD_ERC20"
	FlagTransferSimFailed = "TRANSFER_SIMULATION_FAILED"
	FlagRPCFail           = "RPC_FAIL"
	defaultTokenDecimals  = 18
	maxTokenDecimals      = 36
	burnAddress           = "0x000000000000000000000000000000000000dEaD"
	unknownTokenName      = "Unknown"
	unknownTokenSymbol    = "TKN"
)

const erc20ABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var parsedERC20 = mustParseABI(erc20ABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("ledger: invalid ERC20 ABI: " + err.Error())
	}
	return parsed
}

// ContractReport is the outcome of probing an EVM contract.
// Simulation failure is a flag, never a honeypot verdict on its own.
type ContractReport struct {
	IsContract bool           `json:"isContract"`
	CodeSize   int            `json:"codeSize"`
	IsHoneypot bool           `json:"isHoneypot"`
	Flags      []string       `json:"flags"`
	Token      *TokenMetadata `json:"tokenMeta,omitempty"`
}

// HasFlag reports whether the report carries flag.
func (r ContractReport) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Inspector probes EVM contracts for ERC20 behaviour.
type Inspector struct {
	networks map[string]*evmNetwork
}

// Inspect probes address on the named network.
func (i *Inspector) Inspect(ctx context.Context, network, address string) ContractReport {
	n, ok := i.networks[network]
	if !ok {
		return ContractReport{Flags: []string{FlagRPCFail}}
	}
	return i.inspectNetwork(ctx, n, common.HexToAddress(address))
}

func (i *Inspector) inspectNetwork(ctx context.Context, n *evmNetwork, addr common.Address) ContractReport {
	code, _, err := attempt(ctx, n, "eth_getCode", func(ctx context.Context, c *ethclient.Client) ([]byte, error) {
		return c.CodeAt(ctx, addr, nil)
	})
	if err != nil {
		return ContractReport{Flags: []string{FlagRPCFail}}
	}
	if isEmptyCode(code) {
		return ContractReport{Flags: []string{}}
	}

	report := ContractReport{IsContract: true, CodeSize: len(code), Flags: []string{}}

	supplyData, _ := parsedERC20.Pack("totalSupply")
	if _, err := call(ctx, n, addr, supplyData); err != nil {
		report.Flags = append(report.Flags, FlagNotStandardERC20)
	}

	transferData, err := parsedERC20.Pack("transfer", common.HexToAddress(burnAddress), big.NewInt(0))
	if err == nil {
		if _, err := call(ctx, n, addr, transferData); err != nil {
			log.Printf("[Inspector] %s transfer simulation failed for %s: %v", n.name, addr.Hex(), err)
			report.Flags = append(report.Flags, FlagTransferSimFailed)
		}
	}

	report.Token = tokenMetadata(ctx, n, addr)
	return report
}

type callResult struct {
	data []byte
	err  error
}

// call runs eth_call with endpoint fallback. A JSON-RPC error (e.g. a
// revert) is a well-formed answer and does not move to the next endpoint.
func call(ctx context.Context, n *evmNetwork, to common.Address, data []byte) ([]byte, error) {
	res, _, err := attempt(ctx, n, "eth_call", func(ctx context.Context, c *ethclient.Client) (callResult, error) {
		out, err := c.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		var rpcErr rpc.Error
		if err != nil && errors.As(err, &rpcErr) {
			return callResult{err: err}, nil
		}
		return callResult{data: out}, err
	})
	if err != nil {
		return nil, err
	}
	return res.data, res.err
}

// tokenMetadata probes name, symbol, decimals and totalSupply concurrently.
// It returns nil when neither name nor symbol can be read.
func tokenMetadata(ctx context.Context, n *evmNetwork, addr common.Address) *TokenMetadata {
	methods := []string{"name", "symbol", "decimals", "totalSupply"}
	results := make([][]byte, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	for idx, m := range methods {
		idx, m := idx, m
		g.Go(func() error {
			data, _ := parsedERC20.Pack(m)
			out, err := call(gctx, n, addr, data)
			if err == nil {
				results[idx] = out
			}
			return nil
		})
	}
	_ = g.Wait()

	name := decodeString("name", results[0])
	symbol := decodeString("symbol", results[1])
	if name == "" && symbol == "" {
		return nil
	}

	meta := &TokenMetadata{
		Name:     name,
		Symbol:   symbol,
		Decimals: decodeDecimals(results[2]),
	}
	if meta.Name == "" {
		meta.Name = unknownTokenName
	}
	if meta.Symbol == "" {
		meta.Symbol = unknownTokenSymbol
	}

	if len(results[3]) > 0 {
		supply := new(big.Int).SetBytes(word(results[3]))
		meta.TotalSupply = supply.String()
		meta.TotalSupplyFormatted = FormatUnits(supply, int32(meta.Decimals))
	}

	return meta
}

var nonPrintable = regexp.MustCompile(`[^a-zA-Z0-9 \-.]`)

// decodeString decodes an ABI string. Tokens that return bytes32 fall back
// to the printable characters of the raw word.
func decodeString(method string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if vals, err := parsedERC20.Unpack(method, data); err == nil && len(vals) == 1 {
		if s, ok := vals[0].(string); ok {
			if clean := strings.TrimSpace(s); clean != "" {
				return clean
			}
		}
	}

	var sb strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		}
	}
	return strings.TrimSpace(nonPrintable.ReplaceAllString(sb.String(), ""))
}

func decodeDecimals(data []byte) int {
	if len(data) == 0 {
		return defaultTokenDecimals
	}
	v := new(big.Int).SetBytes(word(data))
	if !v.IsInt64() || v.Int64() < 0 || v.Int64() > maxTokenDecimals {
		return defaultTokenDecimals
	}
	return int(v.Int64())
}

// word returns the first 32-byte ABI word of data.
func word(data []byte) []byte {
	if len(data) > 32 {
		return data[:32]
	}
	return data
}
