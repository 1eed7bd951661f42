// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultConfirmTimeout = 2 * time.Minute

// Config locates the deployed election contract and the key that owns it
type Config struct {
	RPCURL          string        `yaml:"rpc_url"`
	ContractAddress string        `yaml:"contract_address"`
	OwnerKey        string        `yaml:"owner_private_key"`
	ABIPath         string        `yaml:"abi_path"`
	ConfirmTimeout  time.Duration `yaml:"confirm_timeout"`
}

// LoadConfig reads the optional YAML file at path, then lets environment
// variables override individual fields.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open ledger config: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse ledger config %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg.RPCURL, "INFURA_URL")
	overrideFromEnv(&cfg.ContractAddress, "CONTRACT_ADDRESS")
	overrideFromEnv(&cfg.OwnerKey, "CONTRACT_OWNER_PRIVATE_KEY")
	overrideFromEnv(&cfg.ABIPath, "CONTRACT_ABI_PATH")

	if v := os.Getenv("LEDGER_CONFIRM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEDGER_CONFIRM_TIMEOUT: %w", err)
		}
		cfg.ConfirmTimeout = d
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}

	return cfg, nil
}

// Enabled reports whether enough is configured to mirror onto the contract
func (c Config) Enabled() bool {
	return c.ContractAddress != "" && c.OwnerKey != ""
}

func overrideFromEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
