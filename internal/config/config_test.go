package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadWithoutConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing app.yaml must fall back to defaults: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port: %d", cfg.Server.Port)
	}
	if cfg.Database.Name != "formsmith" {
		t.Fatalf("default db name: %q", cfg.Database.Name)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("default access ttl: %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("default refresh ttl: %v", cfg.Auth.RefreshTokenTTL)
	}
}
