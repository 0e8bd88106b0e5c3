package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_SOMMELIER_KEY", "sk-secret")

	path := writeConfig(t, `
models:
  default_chat: "main"
  definitions:
    main:
      provider: "openai"
      model_name: "gpt-4o-mini"
      api_key: "${TEST_SOMMELIER_KEY}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	def, ok := cfg.GetChatModel("")
	if !ok {
		t.Fatal("default chat model not found")
	}
	if def.APIKey != "sk-secret" {
		t.Errorf("APIKey = %q, want expanded env value", def.APIKey)
	}
}

func TestLoadValidatesModels(t *testing.T) {
	path := writeConfig(t, `
catalog:
  base_url: "https://uk.crustaging.com"
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() should require models.definitions")
	}
}

func TestLoadRejectsUnknownDefaultChat(t *testing.T) {
	path := writeConfig(t, `
models:
  default_chat: "missing"
  definitions:
    main:
      provider: "openai"
      model_name: "gpt-4o-mini"
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject default_chat pointing to an undefined model")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestCatalogDefaults(t *testing.T) {
	cfg := (&CatalogConfig{}).GetDefaults()

	if cfg.BaseURL != "https://uk.crustaging.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.WarehouseID != 52 {
		t.Errorf("WarehouseID = %d, want 52", cfg.WarehouseID)
	}
	if cfg.RateLimit != 60 || cfg.BurstLimit != 5 {
		t.Errorf("rate limit defaults = %d/%d", cfg.RateLimit, cfg.BurstLimit)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d", cfg.SearchLimit)
	}
}

func TestCatalogDefaultsKeepExplicitValues(t *testing.T) {
	cfg := (&CatalogConfig{WarehouseID: 7, RateLimit: 10}).GetDefaults()

	if cfg.WarehouseID != 7 || cfg.RateLimit != 10 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestS3Enabled(t *testing.T) {
	disabled := S3Config{}
	if disabled.Enabled() {
		t.Error("empty s3 config must be disabled")
	}

	enabled := S3Config{Endpoint: "minio.local:9000", Bucket: "transcripts"}
	if !enabled.Enabled() {
		t.Error("endpoint + bucket should enable archiving")
	}
}
