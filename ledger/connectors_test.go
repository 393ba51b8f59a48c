package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamscan-engine/classify"
	"scamscan-engine/config"
)

const (
	btcAddr  = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	tronAddr = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	tonAddr  = "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"
	solAddr  = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

func TestBitcoinScan_DrainedFreshAddress(t *testing.T) {
	down := newDownServer(t, http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/address/"+btcAddr, r.URL.Path)
		writeJSON(w, map[string]any{
			"chain_stats":   map[string]any{"funded_txo_sum": 150000000, "spent_txo_sum": 150000000, "tx_count": 2},
			"mempool_stats": map[string]any{"funded_txo_sum": 0, "spent_txo_sum": 0, "tx_count": 1},
		})
	}))
	defer srv.Close()

	snaps := NewBitcoin([]string{down.URL, srv.URL}).Scan(context.Background(), btcAddr)
	require.Len(t, snaps, 1)

	s := snaps[0]
	assert.Equal(t, srv.URL, s.Provider)
	assert.Equal(t, 3, s.TxCount)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "0", s.BalanceFormatted)
	assert.Equal(t, []string{SignalFreshAddress, SignalFundsMovedOut}, s.ScamSignals)
	require.Len(t, s.Notes, 1)
	assert.Contains(t, s.Notes[0], "Total received: 1.5 BTC")
}

func TestBitcoinScan_Unused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"chain_stats": map[string]any{}, "mempool_stats": map[string]any{}})
	}))
	defer srv.Close()

	s := NewBitcoin([]string{srv.URL}).Scan(context.Background(), btcAddr)[0]
	assert.Equal(t, StatusEmpty, s.Status)
	assert.Empty(t, s.ScamSignals)
	assert.Empty(t, s.Notes)
}

func TestBitcoinScan_NotFoundIsUnused(t *testing.T) {
	missing := newDownServer(t, http.StatusNotFound)
	s := NewBitcoin([]string{missing.URL}).Scan(context.Background(), btcAddr)[0]
	assert.False(t, s.Failed())
	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, missing.URL, s.Provider)
	assert.Equal(t, 0, s.TxCount)
}

func TestBitcoinScan_AllDown(t *testing.T) {
	down := newDownServer(t, http.StatusTooManyRequests)
	s := NewBitcoin([]string{down.URL}).Scan(context.Background(), btcAddr)[0]
	assert.True(t, s.Failed())
	assert.Equal(t, "bitcoin", s.Network)
}

func TestTronScan_TokenContract(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("TRON-PRO-API-KEY")
		switch r.URL.Path {
		case "/v1/accounts/" + tronAddr:
			writeJSON(w, map[string]any{"data": []map[string]any{{"type": "Contract", "balance": 2500000}}})
		case "/v1/contracts/" + tronAddr:
			http.NotFound(w, r)
		case "/v1/contracts/" + tronAddr + "/tokens":
			writeJSON(w, map[string]any{"data": []map[string]any{
				{"token_info": map[string]any{"name": "Tether USD", "symbol": "USDT", "decimals": 6}},
			}})
		case "/v1/accounts/" + tronAddr + "/transactions":
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			writeJSON(w, map[string]any{"data": []map[string]any{{}, {}, {}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewTron([]string{srv.URL}, "tron-key").Scan(context.Background(), tronAddr)[0]

	assert.Equal(t, "tron-key", gotKey)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "2.5", s.BalanceFormatted)
	assert.True(t, s.IsContract)
	assert.True(t, s.IsTokenContract)
	assert.Equal(t, "TRC20", s.TokenStandard)
	require.NotNil(t, s.Token)
	assert.Equal(t, "USDT", s.Token.Symbol)
	assert.Equal(t, 3, s.TxCount)
	assert.Equal(t, "contract", s.EntityType)
}

func TestTronScan_ABIDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tokens"):
			writeJSON(w, map[string]any{"data": []any{}})
		case strings.HasPrefix(r.URL.Path, "/v1/contracts/"):
			writeJSON(w, map[string]any{"data": []map[string]any{{
				"abi": map[string]any{"entrys": []map[string]string{
					{"type": "Function", "name": "totalSupply"},
					{"type": "Function", "name": "balanceOf"},
					{"type": "Function", "name": "transfer"},
				}},
			}}})
		case strings.HasSuffix(r.URL.Path, "/transactions"):
			writeJSON(w, map[string]any{"data": []any{}})
		default:
			writeJSON(w, map[string]any{"data": []any{}})
		}
	}))
	defer srv.Close()

	s := NewTron([]string{srv.URL}, "").Scan(context.Background(), tronAddr)[0]
	assert.Equal(t, StatusInactive, s.Status)
	assert.Contains(t, s.Notes, "Account does not exist on TRON mainnet.")
	assert.True(t, s.IsContract)
	assert.True(t, s.IsTokenContract)
	assert.Nil(t, s.Token)
}

func TestTONScan_FallsBackToTonAPI(t *testing.T) {
	toncenter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": false, "error": "rate limited"})
	}))
	defer toncenter.Close()

	tonapi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/transactions") {
			writeJSON(w, map[string]any{"transactions": []any{map[string]any{}, map[string]any{}}})
			return
		}
		writeJSON(w, map[string]any{"balance": 5000000000, "status": "active", "code_hash": "DEADBEEF"})
	}))
	defer tonapi.Close()

	s := NewTON([]string{toncenter.URL}, []string{tonapi.URL}).Scan(context.Background(), tonAddr)[0]

	assert.Equal(t, tonapi.URL, s.Provider)
	assert.Equal(t, "active", s.Status)
	assert.Equal(t, "5", s.BalanceFormatted)
	assert.True(t, s.IsContract)
	assert.Equal(t, 2, s.TxCount)
}

func TestTONScan_KnownWalletCode(t *testing.T) {
	toncenter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getTransactions") {
			writeJSON(w, map[string]any{"ok": true, "result": []any{map[string]any{}}})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "result": map[string]any{
			"balance":   "1200000000",
			"state":     "active",
			"code_hash": "7f602a58aab6fa41063f63683bcab9a9a56dd97ab3c4a45e485ace180105d581",
		}})
	}))
	defer toncenter.Close()

	s := NewTON([]string{toncenter.URL}, nil).Scan(context.Background(), tonAddr)[0]
	assert.False(t, s.IsContract)
	assert.Equal(t, "1.2", s.BalanceFormatted)
	assert.Equal(t, 1, s.TxCount)
	assert.Equal(t, "wallet", s.EntityType)
}

func TestTONScan_AllDown(t *testing.T) {
	down := newDownServer(t, http.StatusBadGateway)
	s := NewTON([]string{down.URL}, []string{down.URL}).Scan(context.Background(), tonAddr)[0]
	assert.True(t, s.Failed())
}

func solanaServer(t *testing.T, account any) *httptest.Server {
	return newRPCServer(t, map[string]rpcHandler{
		"getBalance": constant(map[string]any{"context": map[string]any{"slot": 1}, "value": 1500000000}),
		"getAccountInfo": func(params []json.RawMessage) (any, error) {
			var opts map[string]string
			_ = json.Unmarshal(params[1], &opts)
			assert.Equal(t, "jsonParsed", opts["encoding"])
			return map[string]any{"context": map[string]any{"slot": 1}, "value": account}, nil
		},
		"getSignaturesForAddress": constant([]any{map[string]any{}, map[string]any{}}),
	})
}

func TestSolanaScan_Mint(t *testing.T) {
	srv := solanaServer(t, map[string]any{
		"executable": false,
		"owner":      solanaTokenProgram,
		"lamports":   1,
		"data":       map[string]any{"parsed": map[string]any{"type": "mint"}},
	})

	s := NewSolana([]string{srv.URL}).Scan(context.Background(), solAddr)[0]
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "1.5", s.BalanceFormatted)
	assert.Equal(t, 2, s.TxCount)
	assert.Equal(t, "mint", s.EntityType)
	assert.True(t, s.IsTokenContract)
	assert.False(t, s.IsContract)
}

func TestSolanaDescribe(t *testing.T) {
	tests := []struct {
		name    string
		account any
		kind    string
		entity  string
	}{
		{"program", map[string]any{"executable": true, "owner": "BPFLoader2111111111111111111111111111111111"}, "contract", "program"},
		{"token account", map[string]any{"owner": solanaTokenProgram, "data": map[string]any{"parsed": map[string]any{"type": "account"}}}, "token-account", "token-account"},
		{"plain wallet", map[string]any{"owner": "11111111111111111111111111111111", "data": []string{"", "base64"}}, "wallet", "wallet"},
		{"missing account", nil, "wallet", "wallet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := solanaServer(t, tt.account)
			got, err := NewSolana([]string{srv.URL}).Describe(context.Background(), solAddr)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.entity, got.EntityType)
			assert.Equal(t, "solana", got.Network)
		})
	}
}

func TestSolanaScan_AllDown(t *testing.T) {
	down := newDownServer(t, http.StatusBadGateway)
	s := NewSolana([]string{down.URL}).Scan(context.Background(), solAddr)[0]
	assert.True(t, s.Failed())
}

type fakeConnector struct{ snaps []Snapshot }

func (f fakeConnector) Scan(context.Context, string) []Snapshot { return f.snaps }

func (f fakeConnector) Describe(context.Context, string) (Entity, error) {
	return Entity{Kind: "contract", Network: "test"}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(config.Config{EVMNetworks: ethNetwork("http://127.0.0.1:1")})
	for _, f := range []classify.Family{
		classify.FamilyEVM, classify.FamilySolana, classify.FamilyTron, classify.FamilyTON, classify.FamilyBitcoin,
	} {
		_, ok := r.For(f)
		assert.True(t, ok, f)
	}
	_, ok := r.For(classify.FamilyUnknown)
	assert.False(t, ok)

	r.Register(classify.FamilyEVM, fakeConnector{})
	e, ok := r.Describe(context.Background(), classify.FamilyEVM, zeroAddress)
	require.True(t, ok)
	assert.Equal(t, "test", e.Network)

	_, ok = r.Describe(context.Background(), classify.FamilyBitcoin, btcAddr)
	assert.False(t, ok)
}

func TestRegistry_EtherscanOnlyWithMainnet(t *testing.T) {
	bscOnly := []config.EVMNetwork{{Name: "bsc", Symbol: "BNB", Decimals: 18, Endpoints: []string{"http://127.0.0.1:1"}}}

	c, ok := NewRegistry(config.Config{EVMNetworks: bscOnly, EtherscanAPIKey: "key"}).For(classify.FamilyEVM)
	require.True(t, ok)
	assert.Nil(t, c.(*EVM).etherscan)

	c, _ = NewRegistry(config.Config{EVMNetworks: ethNetwork("http://127.0.0.1:1"), EtherscanAPIKey: "key"}).For(classify.FamilyEVM)
	assert.NotNil(t, c.(*EVM).etherscan)
}
