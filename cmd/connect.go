package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/ui"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet",
	Long: `Resolve the authoritative wallet provider and request account
authorization. The session is persisted so later commands and the widget
can reconnect silently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController(ui.AuthorizePrompt)
		defer ctrl.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := ctrl.Connect(ctx); err != nil {
			sess := ctrl.Snapshot()
			if sess.LastError != "" {
				return fmt.Errorf("%s", sess.LastError)
			}
			return err
		}

		sess := ctrl.Snapshot()
		fmt.Println(ui.KeyValueBlock("Connected", [][2]string{
			{"Account", ui.Addr(sess.Address)},
			{"Chain", fmt.Sprintf("%d", sess.ChainID)},
			{"ETH", ui.Val(sess.ETHBalance)},
			{"USDC", ui.Val(sess.TokenBalance)},
		}))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect and clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController(nil)
		defer ctrl.Close()
		ctrl.Disconnect()
		fmt.Println(ui.Success("Disconnected."))
		return nil
	},
}
