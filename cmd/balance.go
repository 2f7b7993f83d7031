package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/session"
	"github.com/framekit/walletwidget/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show ETH and USDC balances",
	Long: `Show native and token balances for an address. Without an argument
the connected session's address (or the default wallet) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := ""
		if len(args) == 1 {
			address = args[0]
		}
		if address == "" {
			if rec := session.DefaultRecordStore().Load(); rec.Connected {
				address = rec.Address
			}
		}
		if address == "" {
			if w := newWalletManager().Default(); w != nil {
				address = w.Address
			}
		}
		if address == "" {
			return fmt.Errorf("no address: connect first or pass one, e.g. walletwidget balance 0x...")
		}

		spin := ui.NewSpinner(fmt.Sprintf("Fetching balances on %s...", cfg.NetworkMode))
		spin.Start()

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCTimeout)
		defer cancel()

		client := newChainClient()
		token := demoToken()

		wei, ethErr := client.GetBalance(ctx, address)
		raw, tokErr := token.BalanceOf(ctx, client, address)
		spin.Stop()

		pairs := [][2]string{
			{"Address", ui.Addr(address)},
			{"Network", fmt.Sprintf("%s (chain %d)", cfg.NetworkMode, config.ChainID(cfg.NetworkMode))},
		}
		if ethErr != nil {
			pairs = append(pairs, [2]string{"ETH", ui.Err(ethErr.Error())})
		} else {
			pairs = append(pairs, [2]string{"ETH", ui.Val(chain.FormatUnits(wei, config.NativeDecimals, config.NativePlaces))})
		}
		if tokErr != nil {
			pairs = append(pairs, [2]string{token.Symbol, ui.Err(tokErr.Error())})
		} else {
			pairs = append(pairs, [2]string{token.Symbol, ui.Val(chain.FormatUnits(raw, token.Decimals, config.TokenPlaces))})
		}

		fmt.Println(ui.KeyValueBlock("Balances", pairs))
		return nil
	},
}
