package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ETH_RPC_URLS", "")
	t.Setenv("SOLANA_RPC_URLS", "")
	t.Setenv("SOLANA_RPC_URL", "")
	t.Setenv("RENDER_QUEUE_WAIT", "")
	t.Setenv("SKIP_CHROMEDP", "")

	cfg := Load()

	eth, ok := cfg.Network("ethereum")
	require.True(t, ok)
	assert.Equal(t, DefaultEthereumRPC, eth.Endpoints)
	assert.Equal(t, "ETH", eth.Symbol)

	bsc, ok := cfg.Network("bsc")
	require.True(t, ok)
	assert.Equal(t, "BNB", bsc.Symbol)

	assert.Equal(t, DefaultSolanaRPC, cfg.SolanaRPC)
	assert.Equal(t, 10*time.Second, cfg.RenderQueueWait)
	assert.Equal(t, 7*time.Second, cfg.LightFetchTimeout)
	assert.False(t, cfg.SkipHeadless)
	assert.Contains(t, cfg.Whitelist, "etherscan.io")
	assert.Equal(t, "/demo-gray-url", cfg.DemoPathPrefix)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ETH_RPC_URLS", " http://a , http://b ,")
	t.Setenv("SOLANA_RPC_URLS", "")
	t.Setenv("SOLANA_RPC_URL", "http://sol")
	t.Setenv("RENDER_QUEUE_WAIT", "3")
	t.Setenv("REQUEST_TIMEOUT", "2m")
	t.Setenv("LIGHT_FETCH_TIMEOUT", "nonsense")
	t.Setenv("SKIP_CHROMEDP", "true")
	t.Setenv("ETH_SCAM_WALLETS", "0xABCDEF0000000000000000000000000000000001")
	t.Setenv("TON_SCAM_WALLETS", "EQbad, EQworse")
	t.Setenv("URL_WHITELIST_EXTRA", "Example.org")

	cfg := Load()

	eth, _ := cfg.Network("ethereum")
	assert.Equal(t, []string{"http://a", "http://b"}, eth.Endpoints)
	assert.Equal(t, []string{"http://sol"}, cfg.SolanaRPC)
	assert.Equal(t, 3*time.Second, cfg.RenderQueueWait)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 7*time.Second, cfg.LightFetchTimeout)
	assert.True(t, cfg.SkipHeadless)

	assert.Contains(t, cfg.Blacklist, "0xabcdef0000000000000000000000000000000001")
	assert.Contains(t, cfg.Blacklist, "eqbad")
	assert.Contains(t, cfg.Blacklist, "eqworse")
	assert.Contains(t, cfg.Whitelist, "example.org")
}

func TestNetwork_Unknown(t *testing.T) {
	_, ok := Config{}.Network("polygon")
	assert.False(t, ok)
}
