package config

// Config holds all walletwidget configuration.
type Config struct {
	DefaultWallet   string     `json:"default_wallet"`
	NetworkMode     string     `json:"network_mode"` // "mainnet" | "testnet"
	CustomRPCs      []string   `json:"custom_rpcs"`
	WalletEndpoints []Endpoint `json:"wallet_endpoints"` // external wallet RPC endpoints, priority order
	WatchInterval   int        `json:"watch_interval"`   // seconds, widget balance refresh

	// internal: config dir path used for Save()
	configDir string
}

// Endpoint is one configured external wallet RPC endpoint.
type Endpoint struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Wallet represents a stored wallet entry.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`              // "watch-only" | "signing"
	KeyRef    string `json:"key_ref,omitempty"` // keychain reference for signing wallets
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// WalletsFile is the structure of wallets.json.
type WalletsFile struct {
	Wallets []Wallet `json:"wallets"`
}
