package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/ui"
	"github.com/framekit/walletwidget/internal/wallet"
)

var walletKey string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage local wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet (watch-only, or signing with --key)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		name := args[0]

		if walletKey != "" {
			if err := mgr.AddWithKey(name, walletKey); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Added signing wallet %q (%s)", name, ui.TruncateAddr(w.Address))))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("watch-only wallets need an address: walletwidget wallet add %s 0x...", name)
		}
		if err := mgr.Add(name, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added watch-only wallet %q", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Meta("No wallets. Add one with: walletwidget wallet add <name> --key 0x..."))
			return nil
		}
		for _, w := range wallets {
			marker := "  "
			if w.IsDefault {
				marker = ui.StyleSuccess.Render("* ")
			}
			fmt.Printf("%s%s  %s  %s\n", marker, w.Name, ui.Addr(ui.TruncateAddr(w.Address)), ui.Meta(w.Type))
		}
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newWalletManager().SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet is now %q", args[0])))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		if err := mgr.Remove(args[0]); err != nil {
			if err == wallet.ErrWalletNotFound {
				return fmt.Errorf("wallet %q not found", args[0])
			}
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed wallet %q", args[0])))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKey, "key", "", "hex private key (makes the wallet a signing wallet)")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
