package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EVMNetwork describes one EVM-compatible chain and its ordered RPC endpoints.
type EVMNetwork struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	CurrencyName string   `json:"currency_name"`
	Decimals     int32    `json:"decimals"`
	Endpoints    []string `json:"endpoints"`
}

// Config holds everything the engine reads from the environment.
// Provider lists are ordered: the first endpoint is tried first.
type Config struct {
	Port string

	EVMNetworks []EVMNetwork
	SolanaRPC   []string
	TronAPI     []string
	TonCenter   []string
	TonAPI      []string
	BitcoinAPI  []string

	TronAPIKey      string
	EtherscanAPIKey string
	EtherscanURL    string
	APINinjasKey    string
	APINinjasURL    string
	RDAPBaseURL     string

	ChromePath   string
	SkipHeadless bool

	LightFetchTimeout time.Duration
	RenderTimeout     time.Duration
	RenderSettle      time.Duration
	RenderQueueWait   time.Duration
	RequestTimeout    time.Duration

	// Blacklist is the lower-cased set of addresses known to be scams.
	Blacklist map[string]struct{}
	// Whitelist is the exact-host set that caps URL severity.
	Whitelist map[string]struct{}

	DemoHost       string
	DemoPathPrefix string
}

// Default provider endpoints
var (
	DefaultEthereumRPC = []string{
		"https://eth.llamarpc.com",
		"https://rpc.ankr.com/eth",
		"https://1rpc.io/eth",
	}
	DefaultBSCRPC = []string{
		"https://bsc-dataseed1.binance.org",
		"https://rpc.ankr.com/bsc",
		"https://1rpc.io/bnb",
	}
	DefaultSolanaRPC  = []string{"https://api.mainnet-beta.solana.com"}
	DefaultTronAPI    = []string{"https://api.trongrid.io"}
	DefaultTonCenter  = []string{"https://toncenter.com/api/v2"}
	DefaultTonAPI     = []string{"https://tonapi.io/v2"}
	DefaultBitcoinAPI = []string{
		"https://blockstream.info/api",
		"https://mempool.space/api",
	}
)

// DefaultWhitelist is the built-in set of well-known hosts: search engines,
// explorers, exchanges, DEX fronts and wallet vendors.
var DefaultWhitelist = []string{
	"scamscan.online", "www.scamscan.online",

	"google.com", "www.google.com",
	"yandex.ru", "www.yandex.ru",
	"ya.ru", "www.ya.ru",
	"bing.com", "www.bing.com",
	"duckduckgo.com", "www.duckduckgo.com",

	"etherscan.io", "www.etherscan.io",
	"bscscan.com", "www.bscscan.com",
	"polygonscan.com", "www.polygonscan.com",
	"arbiscan.io", "www.arbiscan.io",
	"snowtrace.io", "www.snowtrace.io",
	"ftmscan.com", "www.ftmscan.com",
	"basescan.org", "www.basescan.org",

	"binance.com", "www.binance.com",
	"binance.us", "www.binance.us",
	"coinbase.com", "www.coinbase.com",
	"kraken.com", "www.kraken.com", "pro.kraken.com",
	"bybit.com", "www.bybit.com",
	"okx.com", "www.okx.com",
	"kucoin.com", "www.kucoin.com",
	"htx.com", "www.htx.com",
	"gate.io", "www.gate.io",
	"mexc.com", "www.mexc.com",
	"bitfinex.com", "www.bitfinex.com",
	"bitstamp.net", "www.bitstamp.net",
	"crypto.com", "www.crypto.com",
	"bitget.com", "www.bitget.com",
	"bingx.com", "www.bingx.com",

	"uniswap.org", "app.uniswap.org",
	"pancakeswap.finance", "app.pancakeswap.finance",
	"1inch.io", "app.1inch.io",
	"curve.fi", "app.curve.fi",
	"balancer.fi", "app.balancer.fi",
	"traderjoexyz.com", "app.traderjoexyz.com",
	"quickswap.exchange",
	"sushi.com", "app.sushi.com",
	"raydium.io",
	"jup.ag",

	"metamask.io",
	"trustwallet.com", "www.trustwallet.com",
	"phantom.app", "www.phantom.app",
	"rabby.io", "www.rabby.io",
	"ledger.com", "www.ledger.com",
	"trezor.io", "www.trezor.io",
}

var blacklistEnvs = []string{
	"TON_SCAM_WALLETS",
	"ETH_SCAM_WALLETS",
	"TRON_SCAM_WALLETS",
	"BTC_SCAM_WALLETS",
	"SOL_SCAM_WALLETS",
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}

	solana := getList("SOLANA_RPC_URLS", nil)
	if len(solana) == 0 {
		if single := os.Getenv("SOLANA_RPC_URL"); single != "" {
			solana = []string{single}
		} else {
			solana = DefaultSolanaRPC
		}
	}

	cfg := Config{
		Port: getEnv("PORT", "8080"),

		EVMNetworks: []EVMNetwork{
			{
				Name:         "ethereum",
				Symbol:       "ETH",
				CurrencyName: "Ethereum",
				Decimals:     18,
				Endpoints:    getList("ETH_RPC_URLS", DefaultEthereumRPC),
			},
			{
				Name:         "bsc",
				Symbol:       "BNB",
				CurrencyName: "BNB Chain",
				Decimals:     18,
				Endpoints:    getList("BSC_RPC_URLS", DefaultBSCRPC),
			},
		},
		SolanaRPC:  solana,
		TronAPI:    getList("TRON_API_URLS", DefaultTronAPI),
		TonCenter:  getList("TONCENTER_URL", DefaultTonCenter),
		TonAPI:     getList("TONAPI_URL", DefaultTonAPI),
		BitcoinAPI: getList("BTC_API_URLS", DefaultBitcoinAPI),

		TronAPIKey:      os.Getenv("TRONGRID_API_KEY"),
		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),
		EtherscanURL:    getEnv("ETHERSCAN_URL", "https://api.etherscan.io/v2/api"),
		APINinjasKey:    os.Getenv("API_NINJAS_WHOIS_KEY"),
		APINinjasURL:    getEnv("API_NINJAS_WHOIS_URL", "https://api.api-ninjas.com/v1/whois"),
		RDAPBaseURL:     getEnv("RDAP_BASE_URL", "https://rdap.org"),

		ChromePath:   os.Getenv("CHROME_PATH"),
		SkipHeadless: os.Getenv("SKIP_CHROMEDP") == "true",

		LightFetchTimeout: getDuration("LIGHT_FETCH_TIMEOUT", 7*time.Second),
		RenderTimeout:     getDuration("RENDER_TIMEOUT", 15*time.Second),
		RenderSettle:      getDuration("RENDER_SETTLE", time.Second),
		RenderQueueWait:   getDuration("RENDER_QUEUE_WAIT", 10*time.Second),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 45*time.Second),

		DemoHost:       getEnv("DEMO_HOST", "scamscan.online"),
		DemoPathPrefix: getEnv("DEMO_PATH_PREFIX", "/demo-gray-url"),
	}

	var blacklisted []string
	for _, key := range blacklistEnvs {
		blacklisted = append(blacklisted, splitList(os.Getenv(key))...)
	}
	cfg.Blacklist = toSet(blacklisted)

	hosts := append([]string{}, DefaultWhitelist...)
	hosts = append(hosts, splitList(os.Getenv("URL_WHITELIST_EXTRA"))...)
	cfg.Whitelist = toSet(hosts)

	log.Printf("[Config] loaded: %d EVM networks, %d blacklisted addresses, %d whitelisted hosts",
		len(cfg.EVMNetworks), len(cfg.Blacklist), len(cfg.Whitelist))

	return cfg
}

// Network returns the EVM network with the given name.
func (c Config) Network(name string) (EVMNetwork, bool) {
	for _, n := range c.EVMNetworks {
		if n.Name == name {
			return n, true
		}
	}
	return EVMNetwork{}, false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if items := splitList(os.Getenv(key)); len(items) > 0 {
		return items
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// Bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("[Config] ignoring invalid %s=%q", key, v)
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
