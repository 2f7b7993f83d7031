package chain

import (
	"math/big"
	"strings"
)

// FormatUnits scales a base-unit quantity by the asset's decimal count and
// renders it with a fixed number of fractional places.
//
//	FormatUnits(1500000000000000000, 18, 4) → "1.5000"
//	FormatUnits(1234567, 6, 2)              → "1.23"
func FormatUnits(raw *big.Int, decimals, places int) string {
	if raw == nil {
		return ""
	}
	if decimals <= 0 {
		return raw.String()
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f := new(big.Float).SetPrec(256).SetInt(raw)
	f.Quo(f, new(big.Float).SetPrec(256).SetInt(div))
	return f.Text('f', places)
}

// FormatWei renders a wei amount as an ETH string with 4 fractional places.
func FormatWei(wei *big.Int) string {
	return FormatUnits(wei, 18, 4)
}

// ParseHexQuantity parses a 0x-prefixed hex quantity. Returns 0, false on
// malformed input.
func ParseHexQuantity(s string) (uint64, bool) {
	n, ok := parseBigHex(strings.TrimSpace(s))
	if !ok || !n.IsUint64() {
		return 0, false
	}
	return n.Uint64(), true
}
