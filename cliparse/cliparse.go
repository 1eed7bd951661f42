package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Ledger mirroring modes
const (
	LedgerOff      = "off"
	LedgerMemory   = "memory"
	LedgerEthereum = "ethereum"
)

const defaultEnvFile = ".env"

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKey     string
	LedgerMode   string
	LedgerConfig string
}

// ParseFlags parses flags, fills the gaps from the environment and validates.
// Values from a .env file never override variables already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("athena", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", "", "Load environment from file (default .env if present)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin API key (prefer env)")

	// Ledger mirroring
	fs.StringVar(&cfg.LedgerMode, "ledger", "", "Ledger mode (off, memory or ethereum)")
	fs.StringVar(&cfg.LedgerConfig, "ledger-config", "", "Ledger YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:athena.db"
	}

	// Secrets - MUST be provided
	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	if cfg.LedgerMode == "" {
		cfg.LedgerMode = os.Getenv("LEDGER_MODE")
		if cfg.LedgerMode == "" {
			cfg.LedgerMode = LedgerOff
		}
	}
	switch cfg.LedgerMode {
	case LedgerOff, LedgerMemory, LedgerEthereum:
	default:
		return Config{}, fmt.Errorf("unknown ledger mode %q", cfg.LedgerMode)
	}

	if cfg.LedgerConfig == "" {
		cfg.LedgerConfig = os.Getenv("LEDGER_CONFIG")
	}

	return cfg, nil
}

// loadEnvFile loads an explicit env file or, when none is given, .env if it exists
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
