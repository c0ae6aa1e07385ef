package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("DEFAULT_LANGUAGE", "en")
	t.Setenv("TZ", "")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.TelegramToken != "123:abc" {
		t.Errorf("Expected token '123:abc', got '%s'", cfg.TelegramToken)
	}
	if cfg.NewsAPIKey != "news-key" {
		t.Errorf("Expected news API key 'news-key', got '%s'", cfg.NewsAPIKey)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("Expected default language 'en', got '%s'", cfg.DefaultLanguage)
	}
	if cfg.FetchTimeout != 10 {
		t.Errorf("Expected default fetch timeout 10, got %d", cfg.FetchTimeout)
	}
	if cfg.DefaultLimit != 5 {
		t.Errorf("Expected default limit 5, got %d", cfg.DefaultLimit)
	}
	if cfg.DescriptionLimit != 150 {
		t.Errorf("Expected default description limit 150, got %d", cfg.DescriptionLimit)
	}
	if cfg.NewsAPIURL != "https://newsapi.org/v2" {
		t.Errorf("Expected default news API URL, got '%s'", cfg.NewsAPIURL)
	}
}

func TestLoadArgsFlagsOverrideDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("TZ", "")

	cfg, err := LoadArgs([]string{"--fetch-timeout", "3", "--worker-count", "7", "--port", "9090"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.GetFetchTimeout() != 3*time.Second {
		t.Errorf("Expected fetch timeout 3s, got %v", cfg.GetFetchTimeout())
	}
	if cfg.WorkerCount != 7 {
		t.Errorf("Expected worker count 7, got %d", cfg.WorkerCount)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}

func TestLoadArgsMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("NEWS_API_KEY", "news-key")

	cfg, err := LoadArgs([]string{})
	if err == nil {
		t.Fatal("Expected error for missing telegram token")
	}
	if cfg != nil {
		t.Error("Expected nil config on error")
	}
}

func TestLoadArgsRejectsNegativeValues(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("NEWS_API_KEY", "news-key")

	_, err := LoadArgs([]string{"--default-limit=-1"})
	if err == nil {
		t.Fatal("Expected error for negative default limit")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Cfg{FetchTimeout: 0, SearchTimeout: 4, AutoPostFirstDelay: -5}

	if cfg.GetFetchTimeout() != 10*time.Second {
		t.Errorf("Expected fallback fetch timeout 10s, got %v", cfg.GetFetchTimeout())
	}
	if cfg.GetSearchTimeout() != 4*time.Second {
		t.Errorf("Expected search timeout 4s, got %v", cfg.GetSearchTimeout())
	}
	if cfg.GetAutoPostFirstDelay() != 0 {
		t.Errorf("Expected negative first delay to clamp to 0, got %v", cfg.GetAutoPostFirstDelay())
	}
}
