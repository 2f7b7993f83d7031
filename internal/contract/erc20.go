package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ERC-20 function selectors, computed from the canonical signatures:
//
//	balanceOf(address)        → 0x70a08231
//	transfer(address,uint256) → 0xa9059cbb
var (
	SelectorBalanceOf = selector("balanceOf(address)")
	SelectorTransfer  = selector("transfer(address,uint256)")
)

// selector returns the 4-byte function selector for a signature, 0x-prefixed.
func selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// EncodeBalanceOf builds balanceOf(holder) calldata.
func EncodeBalanceOf(holder string) string {
	return SelectorBalanceOf + padAddress(holder)
}

// EncodeTransfer builds transfer(to, amount) calldata.
func EncodeTransfer(to string, amount *big.Int) string {
	return SelectorTransfer + padAddress(to) + padUint(amount)
}

// DecodeUint256 parses a single uint256 return value from an eth_call result.
func DecodeUint256(result string) (*big.Int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(result), "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("could not parse uint256: %s", result)
	}
	return n, nil
}

// padAddress left-pads a hex address to a 32-byte ABI word.
func padAddress(addr string) string {
	return fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(addr, "0x")))
}

// padUint renders an unsigned integer as a 32-byte ABI word.
func padUint(n *big.Int) string {
	return fmt.Sprintf("%064x", n)
}
