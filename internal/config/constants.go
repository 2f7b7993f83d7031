package config

import "time"

// The widget is pinned to a single target network per mode. Mainnet is Base,
// testnet is Base Sepolia; the demo token is the canonical USDC deployment
// on each.
const (
	ChainIDMainnet = uint64(8453)  // Base
	ChainIDTestnet = uint64(84532) // Base Sepolia

	TokenAddressMainnet = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	TokenAddressTestnet = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"

	TokenSymbol    = "USDC"
	TokenDecimals  = 6
	NativeSymbol   = "ETH"
	NativeDecimals = 18

	// Display precision for the widget's balance panel.
	NativePlaces = 4
	TokenPlaces  = 2

	// DemoTransferUnits is the fixed demo transfer: 0.01 USDC in base units.
	DemoTransferUnits = int64(10_000)
)

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitETHTransfer   = uint64(21_000)
	GasLimitERC20Transfer = uint64(80_000)
)

// Timeouts and delays.
const (
	RPCTimeout       = 15 * time.Second
	TxConfirmTimeout = 3 * time.Minute

	// HostSettleDelay is how long the session controller waits before
	// re-resolving the provider to attach event subscriptions. The frame
	// host announces its wallet endpoint asynchronously, so the endpoint
	// that was absent during the first resolve may exist by now.
	HostSettleDelay = 500 * time.Millisecond

	// HostPollInterval drives the host provider's account/chain change polling.
	HostPollInterval = 3 * time.Second
)

// Environment variables.
const (
	EnvConfigDir    = "WALLETWIDGET_CONFIG_DIR"
	EnvHostEndpoint = "FRAME_WALLET_ENDPOINT" // set by the embedding frame host
)

// ChainID returns the pinned chain id for a network mode.
func ChainID(mode string) uint64 {
	if mode == "testnet" {
		return ChainIDTestnet
	}
	return ChainIDMainnet
}

// TokenAddress returns the pinned USDC contract for a network mode.
func TokenAddress(mode string) string {
	if mode == "testnet" {
		return TokenAddressTestnet
	}
	return TokenAddressMainnet
}

// DefaultRPCs returns the built-in public RPC endpoints for a network mode.
func DefaultRPCs(mode string) []string {
	if mode == "testnet" {
		return []string{
			"https://sepolia.base.org",
			"https://base-sepolia-rpc.publicnode.com",
		}
	}
	return []string{
		"https://mainnet.base.org",
		"https://base-rpc.publicnode.com",
	}
}

// Explorer returns the block explorer base URL for a network mode.
func Explorer(mode string) string {
	if mode == "testnet" {
		return "https://sepolia.basescan.org"
	}
	return "https://basescan.org"
}
