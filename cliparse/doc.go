// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required for postgres, default file:athena.db for sqlite)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKey: Shared secret for admin routes (required)
  - LedgerMode: off, memory or ethereum (default: off)
  - LedgerConfig: YAML file with ledger connection settings

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	--admin-key     Admin API key
	--ledger        Ledger mode
	--ledger-config Ledger YAML config
	--env-file      Env file to load (default .env if present)

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	ADMIN_KEY     → --admin-key
	LEDGER_MODE   → --ledger
	LEDGER_CONFIG → --ledger-config

CLI flags take precedence over environment variables, and variables already
set take precedence over the env file.
*/
package cliparse
