//go:build unit

package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.DB.Driver != "sqlite3" {
		t.Errorf("expected default driver sqlite3, got %q", cfg.DB.Driver)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %v", cfg.Cache.TTL)
	}
	if cfg.Token.TTL != 15*time.Minute {
		t.Errorf("expected token ttl 15m, got %v", cfg.Token.TTL)
	}
	if cfg.Session.Lifetime != 24*time.Hour {
		t.Errorf("expected session lifetime 24h, got %v", cfg.Session.Lifetime)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CLUB_SERVER_PORT", "9090")
	t.Setenv("CLUB_DB_DRIVER", "mysql")
	t.Setenv("CLUB_TOKEN_TTL", "1h")
	t.Setenv("CLUB_AUTH_ADMINS", "alice,bob")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.DB.Driver != "mysql" {
		t.Errorf("expected driver mysql, got %q", cfg.DB.Driver)
	}
	if cfg.Token.TTL != time.Hour {
		t.Errorf("expected token ttl 1h, got %v", cfg.Token.TTL)
	}
	if len(cfg.Auth.Admins) != 2 || cfg.Auth.Admins[0] != "alice" {
		t.Errorf("expected admins [alice bob], got %v", cfg.Auth.Admins)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
