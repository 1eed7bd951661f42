// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards the admin API.

# Admin Keys

Admin routes require the X-Admin-Key header to match the configured key:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

Both values are hashed with SHA-256 and compared in constant time, so
neither content nor length leaks through timing.

Generate a key for a new deployment:

	key, err := auth.GenerateAdminKey()

Keys are 24 random bytes, URL-safe base64 encoded without padding.

# Fingerprints

Never log a key. Log its fingerprint instead:

	slog.Warn("rejected admin key", "fingerprint", auth.Fingerprint(key))
*/
package auth
