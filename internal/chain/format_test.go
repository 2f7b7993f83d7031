package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// FormatUnits
// ---------------------------------------------------------------------------

func TestFormatUnitsNative(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.5000", FormatUnits(wei, 18, 4))
}

func TestFormatUnitsToken(t *testing.T) {
	assert.Equal(t, "1.23", FormatUnits(big.NewInt(1234567), 6, 2))
}

func TestFormatUnitsZero(t *testing.T) {
	assert.Equal(t, "0.0000", FormatUnits(big.NewInt(0), 18, 4))
	assert.Equal(t, "0.00", FormatUnits(big.NewInt(0), 6, 2))
}

func TestFormatUnitsWholeNumber(t *testing.T) {
	units, ok := new(big.Int).SetString("2000000", 10)
	require.True(t, ok)
	assert.Equal(t, "2.00", FormatUnits(units, 6, 2))
}

func TestFormatUnitsLargeBalance(t *testing.T) {
	// 123456.789012 USDC base units.
	units, ok := new(big.Int).SetString("123456789012", 10)
	require.True(t, ok)
	assert.Equal(t, "123456.79", FormatUnits(units, 6, 2))
}

func TestFormatUnitsNil(t *testing.T) {
	assert.Equal(t, "", FormatUnits(nil, 18, 4))
}

func TestFormatUnitsNoDecimals(t *testing.T) {
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0, 2))
}

func TestFormatUnitsIdempotent(t *testing.T) {
	wei := big.NewInt(987654321000000000)
	first := FormatUnits(wei, 18, 4)
	second := FormatUnits(wei, 18, 4)
	assert.Equal(t, first, second)
}

func TestFormatWei(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.5000", FormatWei(wei))
}

// ---------------------------------------------------------------------------
// ParseHexQuantity
// ---------------------------------------------------------------------------

func TestParseHexQuantity(t *testing.T) {
	id, ok := ParseHexQuantity("0x2105")
	require.True(t, ok)
	assert.Equal(t, uint64(8453), id)
}

func TestParseHexQuantityNoPrefix(t *testing.T) {
	id, ok := ParseHexQuantity("2105")
	require.True(t, ok)
	assert.Equal(t, uint64(8453), id)
}

func TestParseHexQuantityEmpty(t *testing.T) {
	id, ok := ParseHexQuantity("0x")
	require.True(t, ok)
	assert.Equal(t, uint64(0), id)
}

func TestParseHexQuantityGarbage(t *testing.T) {
	_, ok := ParseHexQuantity("0xzz")
	assert.False(t, ok)
}
