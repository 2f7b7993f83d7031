package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/contract"
	"github.com/framekit/walletwidget/internal/provider"
	"github.com/framekit/walletwidget/internal/session"
	"github.com/framekit/walletwidget/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/framekit/walletwidget/cmd.Version=1.2.3" .
var Version = "0.3.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	testnet bool
	mainnet bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "walletwidget",
	Short: "Frame wallet widget",
	Long: `walletwidget is a frame mini-app wallet widget for the terminal.

  Connects to whichever wallet provider is authoritative right now
  (frame host, local keystore, or a configured endpoint), tracks the
  session, shows ETH and USDC balances on Base, and sends a demo
  token transfer.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Without either flag the persisted mode is used
(default: mainnet).`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// WALLETWIDGET_CONFIG_DIR seeds the --config default; the flag wins.
	if envDir := os.Getenv(config.EnvConfigDir); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.walletwidget)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use Base Sepolia instead of Base")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use Base instead of Base Sepolia")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	// Register all sub-commands.
	rootCmd.AddCommand(
		widgetCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		balanceCmd,
		sendCmd,
		manifestCmd,
		walletCmd,
		configCmd,
	)
}

// --- shared wiring ---

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}

// newChainClient returns a read/write client for the pinned network.
// Called per operation so config edits and custom RPCs take effect.
func newChainClient() *chain.Client {
	return chain.NewClient(cfg.RPCs()[0])
}

func demoToken() contract.Token {
	return contract.Token{
		Address:  config.TokenAddress(cfg.NetworkMode),
		Symbol:   config.TokenSymbol,
		Decimals: config.TokenDecimals,
	}
}

// newResolver assembles the provider sources in priority order:
//
//  1. frame host endpoint (FRAME_WALLET_ENDPOINT)
//  2. local keystore (when a default signing wallet exists)
//  3. first configured external wallet endpoint
func newResolver(auth provider.Authorizer) *provider.Resolver {
	mgr := newWalletManager()
	local := provider.NewLocal(mgr, newChainClient, config.ChainID(cfg.NetworkMode), auth)
	return provider.NewResolver(
		provider.NewHostSource(),
		&provider.LocalSource{Local: local},
		provider.NewEndpointSource(func() []config.Endpoint { return cfg.WalletEndpoints }),
	)
}

func newController(auth provider.Authorizer, opts ...session.ControllerOption) *session.Controller {
	if verbose {
		opts = append(opts, session.WithLogf(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "walletwidget: "+format+"\n", args...)
		}))
	}
	return session.NewController(newResolver(auth), newChainClient, demoToken(), opts...)
}
