package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const (
	defaultMode     = "mainnet"
	defaultInterval = 15

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.walletwidget.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".walletwidget")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.NetworkMode == "" {
		cfg.NetworkMode = defaultMode
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = defaultInterval
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// RPCs returns the effective RPC list for the configured mode:
// custom RPCs first, then the built-in defaults.
func (c *Config) RPCs() []string {
	return append(slices.Clone(c.CustomRPCs), DefaultRPCs(c.NetworkMode)...)
}

// AddRPC adds a custom RPC URL.
func (c *Config) AddRPC(url string) error {
	if slices.Contains(c.CustomRPCs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.CustomRPCs = append(c.CustomRPCs, url)
	return nil
}

// AddWalletEndpoint registers an external wallet RPC endpoint.
func (c *Config) AddWalletEndpoint(name, url string) error {
	for _, e := range c.WalletEndpoints {
		if e.URL == url {
			return fmt.Errorf("wallet endpoint %s already configured", url)
		}
	}
	c.WalletEndpoints = append(c.WalletEndpoints, Endpoint{Name: name, URL: url})
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

func defaults(dir string) *Config {
	return &Config{
		NetworkMode:   defaultMode,
		WatchInterval: defaultInterval,
		configDir:     dir,
	}
}
