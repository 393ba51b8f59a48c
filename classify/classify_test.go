package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		kind   Kind
		family Family
	}{
		{"empty", "", KindUnknown, FamilyUnknown},
		{"whitespace", "   ", KindUnknown, FamilyUnknown},
		{"ipv4", "192.168.1.10", KindIP, FamilyUnknown},
		{"evm", "0x" + strings.Repeat("0", 40), KindWallet, FamilyEVM},
		{"evm mixed case", "0xdAC17F958D2ee523a2206206994597C13D831ec7", KindWallet, FamilyEVM},
		{"tron", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", KindWallet, FamilyTron},
		{"ton friendly", "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N", KindWallet, FamilyTON},
		{"btc legacy", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", KindWallet, FamilyBitcoin},
		{"btc p2sh", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", KindWallet, FamilyBitcoin},
		{"btc bech32", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", KindWallet, FamilyBitcoin},
		{"solana", "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", KindWallet, FamilySolana},
		{"domain", "example.com", KindURL, FamilyUnknown},
		{"url", "https://example.com/path?q=1", KindURL, FamilyUnknown},
		{"short hex is url", "0x1234", KindURL, FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.value)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.family, got.Family)
		})
	}
}

// Legacy Bitcoin addresses also fit the Solana base58 length window.
func TestClassify_BitcoinNeverSolana(t *testing.T) {
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	for _, prefix := range []string{"1", "3"} {
		for length := 31; length <= 34; length++ {
			for offset := 0; offset < len(alphabet); offset += 7 {
				var sb strings.Builder
				sb.WriteString(prefix)
				for i := 0; i < length; i++ {
					sb.WriteByte(alphabet[(offset+i*5)%len(alphabet)])
				}
				addr := sb.String()
				require.True(t, len(addr) >= 32 && len(addr) <= 44, addr)

				got := Classify(addr)
				assert.Equal(t, FamilyBitcoin, got.Family, addr)
				assert.NotEqual(t, FamilySolana, got.Family, addr)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, k)

	k, err = ParseKind("AUTO")
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, k)

	k, err = ParseKind("domain")
	require.NoError(t, err)
	assert.Equal(t, KindURL, k)

	k, err = ParseKind("contract")
	require.NoError(t, err)
	assert.Equal(t, KindContract, k)

	_, err = ParseKind("nft")
	assert.Error(t, err)
}

func TestResolve_ExplicitKindKeepsFamily(t *testing.T) {
	in := Resolve("0xdAC17F958D2ee523a2206206994597C13D831ec7", KindContract)
	assert.Equal(t, KindContract, in.Kind)
	assert.Equal(t, FamilyEVM, in.Family)
	assert.True(t, in.IsAddress())

	in = Resolve("example.com", KindUnknown)
	assert.Equal(t, KindURL, in.Kind)
	assert.False(t, in.IsAddress())
}
