package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidKeywordMatch(t *testing.T) {
	cfg := validConfig()
	cfg.Search.KeywordMatch = "some"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid keyword match mode")
	}

	expected := `search.keyword_match must be "all" or "any", got "some"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_KeywordMatchModes(t *testing.T) {
	for _, mode := range []string{"all", "any"} {
		t.Run("mode="+mode, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search.KeywordMatch = mode
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for mode %q: %v", mode, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing postgres url")
	}

	cfg.Database.URL = "postgres://localhost/talentdex?sslmode=disable"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "cohere"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidate_MissingAPIKeyIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("missing api key must not fail validation: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.Search.KeywordMatch != "all" {
		t.Errorf("expected KeywordMatch=all, got %q", cfg.Search.KeywordMatch)
	}
	if cfg.Search.MinScore != 0.30 {
		t.Errorf("expected MinScore=0.30, got %g", cfg.Search.MinScore)
	}
	if cfg.Scheduler.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Scheduler.Workers)
	}
	if cfg.Scheduler.QueueSize != 256 {
		t.Errorf("expected QueueSize=256, got %d", cfg.Scheduler.QueueSize)
	}
	if cfg.Fetch.MaxBytes != 20<<20 {
		t.Errorf("expected MaxBytes=20MiB, got %d", cfg.Fetch.MaxBytes)
	}
	if cfg.Storage.KeyPrefix != "talentdex:" {
		t.Errorf("expected KeyPrefix='talentdex:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:    SearchConfig{KeywordMatch: "any", MinScore: 0.5},
		Scheduler: SchedulerConfig{Workers: 1, QueueSize: 8},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Search.KeywordMatch != "any" {
		t.Errorf("expected KeywordMatch=any, got %q", cfg.Search.KeywordMatch)
	}
	if cfg.Search.MinScore != 0.5 {
		t.Errorf("expected MinScore=0.5, got %g", cfg.Search.MinScore)
	}
	if cfg.Scheduler.QueueSize != 8 {
		t.Errorf("expected QueueSize=8, got %d", cfg.Scheduler.QueueSize)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TALENTDEX_TEST_KEY", "sk-test")

	data := []byte(`
http:
  port: 8080
database:
  addrs: ["${TALENTDEX_TEST_ADDR:-localhost:6379}"]
embedding:
  api_key: "${TALENTDEX_TEST_KEY}"
  model: text-embedding-3-small
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.Embedding.APIKey)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("expected default addr, got %v", cfg.Database.Addrs)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("http: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
