// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY", "test-key")
	t.Setenv("LEDGER_MODE", "memory")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.AdminKey != "test-key" {
		t.Errorf("expected admin key from env, got %q", cfg.AdminKey)
	}
	if cfg.LedgerMode != LedgerMemory {
		t.Errorf("expected memory ledger, got %s", cfg.LedgerMode)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LEDGER_MODE", "memory")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-key", "k1", "-ledger", "off"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.LedgerMode != LedgerOff {
		t.Errorf("CLI should override env: expected off, got %s", cfg.LedgerMode)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("ADMIN_KEY", "k")
	t.Chdir(t.TempDir())

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite by default, got %s", cfg.DatabaseType)
	}
	if cfg.DatabaseURL != "file:athena.db" {
		t.Errorf("expected default sqlite file, got %s", cfg.DatabaseURL)
	}
	if cfg.LedgerMode != LedgerOff {
		t.Errorf("expected ledger off by default, got %s", cfg.LedgerMode)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("LEDGER_MODE", "")

	tests := []struct {
		name string
		args []string
	}{
		{"missing admin key", []string{"-d", "file:x.db"}},
		{"postgres without url", []string{"-t", "postgres", "-admin-key", "k"}},
		{"unknown database type", []string{"-t", "mysql", "-admin-key", "k"}},
		{"unknown ledger mode", []string{"-admin-key", "k", "-ledger", "bitcoin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseFlags_InvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("ADMIN_KEY", "k")

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error for invalid PORT")
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "ADMIN_KEY=from-file\nLEDGER_CONFIG=ledger.yaml\nPORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Already-set variables win over the file
	t.Setenv("PORT", "7100")
	// Registers cleanup so values loaded from the file do not leak
	t.Setenv("ADMIN_KEY", "")
	t.Setenv("LEDGER_CONFIG", "")
	os.Unsetenv("ADMIN_KEY")
	os.Unsetenv("LEDGER_CONFIG")

	cfg, err := ParseFlags([]string{"-env-file", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AdminKey != "from-file" {
		t.Errorf("expected admin key from env file, got %q", cfg.AdminKey)
	}
	if cfg.LedgerConfig != "ledger.yaml" {
		t.Errorf("expected ledger config from env file, got %q", cfg.LedgerConfig)
	}
	if cfg.Port != 7100 {
		t.Errorf("env file must not override set variables: got %d", cfg.Port)
	}
}

func TestParseFlags_MissingEnvFile(t *testing.T) {
	if _, err := ParseFlags([]string{"-env-file", filepath.Join(t.TempDir(), "nope.env"), "-admin-key", "k"}); err == nil {
		t.Error("expected error for missing explicit env file")
	}
}
