// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger defines the gateway elections are mirrored onto and its
implementations.

# Gateway

Gateway exposes the five mutating contract calls plus a receipt lookup.
Each mutating call blocks until the transaction is confirmed and returns a
Receipt carrying the transaction hash. A nil Gateway means mirroring is
disabled.

# Implementations

  - Memory: in-process simulation of the contract with fault injection,
    used by the memory ledger mode and by tests
  - Ethereum: go-ethereum client that signs with the contract owner's key
    and waits for each receipt
  - Instrument: decorator adding Prometheus metrics and confirmation logs

# Configuration

LoadConfig reads an optional YAML file:

	rpc_url: https://sepolia.infura.io/v3/<key>
	contract_address: 0x...
	owner_private_key: <hex>
	abi_path: contracts/AthenaElection.json
	confirm_timeout: 2m

and applies environment overrides: INFURA_URL, CONTRACT_ADDRESS,
CONTRACT_OWNER_PRIVATE_KEY, CONTRACT_ABI_PATH, LEDGER_CONFIRM_TIMEOUT.
*/
package ledger
