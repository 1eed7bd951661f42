// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Athena API server.

Athena runs elections whose rosters and votes are mirrored onto an Ethereum
smart contract, while the queryable, authoritative state lives in a
relational store.

# Starting the Server

	ADMIN_KEY=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-key ... -ledger ethereum -ledger-config ledger.yaml

# Configuration

Required settings:

  - ADMIN_KEY (--admin-key): Shared secret for admin routes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (required for postgres)
  - LEDGER_MODE (--ledger): off, memory or ethereum (default: off)
  - LEDGER_CONFIG (--ledger-config): YAML with rpc_url, contract_address, ...

Ethereum settings can also come from INFURA_URL, CONTRACT_ADDRESS,
CONTRACT_OWNER_PRIVATE_KEY and CONTRACT_ABI_PATH. A .env file in the working
directory is loaded when present.

# Architecture

  - elections: Lifecycle, candidates, votes, tallies, ledger mirroring
  - ledger: Gateway interface, Ethereum client, in-memory simulator, metrics
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, admin guard, CORS, JSON helpers
  - models: Request/response types
  - auth: Admin key checks
  - db: Connections and schema for postgres and sqlite
  - cliparse: Configuration parsing

Logs are text on a terminal and JSON otherwise.
*/
package main
