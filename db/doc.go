// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver by dialect, pings, and creates the schema:

	conn, err := db.Open(ctx, db.DialectPostgres, cfg.DatabaseURL)

Two dialects are supported:

  - postgres: github.com/lib/pq, the production store
  - sqlite: modernc.org/sqlite, embedded mode and tests

SQLite connections get foreign keys and a busy timeout turned on, and are
limited to one open connection.

# Schema Creation

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: title, description, start/end timestamps, active flag
  - candidate: name, owning election, reconciled ledger index
  - vote: election, candidate, lowercase ledger hash

# Relationships

	election 1──* candidate
	election 1──* vote
	candidate 1──* vote

All foreign keys use ON DELETE CASCADE.

# Deduplication

vote.ledger_hash carries a unique index. It is the only replay protection:
IsUniqueViolation recognizes the violation from either driver so callers
can report a conflict instead of a database error.
*/
package db
