package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/ui"
)

var (
	sendTo   string
	sendWait bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the demo token transfer (0.01 USDC)",
	Long: `Send the fixed demo transfer of 0.01 USDC through the resolved
wallet provider. Without --to the transfer goes to the connected address
itself.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController(ui.AuthorizePrompt)
		defer ctrl.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		// Restore the session first; prompt for a fresh connection only
		// when silent reconnection yields nothing.
		if err := ctrl.Initialize(ctx); err != nil && verbose {
			fmt.Println(ui.Warn(err.Error()))
		}
		if !ctrl.Snapshot().Connected() {
			if err := ctrl.Connect(ctx); err != nil {
				return err
			}
		}

		sess := ctrl.Snapshot()
		amount := chain.FormatUnits(
			big.NewInt(config.DemoTransferUnits), config.TokenDecimals, config.TokenPlaces)
		to := sendTo
		if to == "" {
			to = sess.Address
		}
		fmt.Println(ui.KeyValueBlock("Transfer Preview", [][2]string{
			{"From", ui.Addr(ui.TruncateAddr(sess.Address))},
			{"To", ui.Addr(ui.TruncateAddr(to))},
			{"Amount", ui.Val(amount + " " + config.TokenSymbol)},
			{"Network", fmt.Sprintf("%s (chain %d)", cfg.NetworkMode, config.ChainID(cfg.NetworkMode))},
		}))
		if !ui.Confirm("Send this transfer?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner("Submitting transfer...")
		spin.Start()
		hash, err := ctrl.SendTransfer(ctx, sendTo)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Transfer submitted!"))
		fmt.Println(ui.Addr("Hash: " + hash))
		fmt.Println(ui.Meta(config.Explorer(cfg.NetworkMode) + "/tx/" + hash))

		if sendWait {
			spin = ui.NewSpinner("Waiting for confirmation...")
			spin.Start()
			receipt, err := newChainClient().WaitForReceipt(ctx, hash, config.TxConfirmTimeout)
			spin.Stop()
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Confirmed in block %d (gas used %d)", receipt.BlockNumber, receipt.GasUsed)))
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (default: self)")
	sendCmd.Flags().BoolVar(&sendWait, "wait", false, "wait for the transaction to be mined")
}
