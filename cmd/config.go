package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints := make([]string, 0, len(cfg.WalletEndpoints))
		for _, e := range cfg.WalletEndpoints {
			endpoints = append(endpoints, e.Name+" "+e.URL)
		}
		fmt.Println(ui.KeyValueBlock("Configuration", [][2]string{
			{"Dir", cfg.Dir()},
			{"Network mode", cfg.NetworkMode},
			{"Default wallet", orDash(cfg.DefaultWallet)},
			{"RPCs", strings.Join(cfg.RPCs(), "\n")},
			{"Wallet endpoints", orDash(strings.Join(endpoints, "\n"))},
			{"Watch interval", fmt.Sprintf("%ds", cfg.WatchInterval)},
		}))
		return nil
	},
}

var configSetModeCmd = &cobra.Command{
	Use:   "set-network-mode <mainnet|testnet>",
	Short: "Persist the network mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := args[0]
		if mode != "mainnet" && mode != "testnet" {
			return fmt.Errorf("mode must be mainnet or testnet")
		}
		cfg.NetworkMode = mode
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Network mode: " + mode))
		return nil
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add a custom RPC endpoint (tried before the built-in ones)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Added RPC " + args[0]))
		return nil
	},
}

var configAddEndpointCmd = &cobra.Command{
	Use:   "add-endpoint <name> <url>",
	Short: "Register an external wallet RPC endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddWalletEndpoint(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Added wallet endpoint " + args[0]))
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetModeCmd, configAddRPCCmd, configAddEndpointCmd)
}
