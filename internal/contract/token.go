package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/framekit/walletwidget/internal/chain"
)

// Token describes one fixed ERC-20 deployment.
type Token struct {
	Address  string
	Symbol   string
	Decimals int
}

// BalanceOf reads the token balance of holder through a read-only chain client.
func (t Token) BalanceOf(ctx context.Context, client *chain.Client, holder string) (*big.Int, error) {
	result, err := client.CallContract(ctx, t.Address, EncodeBalanceOf(holder))
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", t.Symbol, err)
	}
	return DecodeUint256(result)
}

// TransferCalldata builds the calldata for transfer(to, amount).
func (t Token) TransferCalldata(to string, amount *big.Int) string {
	return EncodeTransfer(to, amount)
}
