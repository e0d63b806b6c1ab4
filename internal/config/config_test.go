package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"AI_PROVIDER", "AI_SAMPLE_CAP", "AI_TEMPERATURE", "NATS_SUBJECT", "CATALOG_MAX_PAGES", "BREAKER_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.AIProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.AIProvider)
	}
	if cfg.AISampleCap != 30 {
		t.Fatalf("expected default sample cap 30, got %d", cfg.AISampleCap)
	}
	if cfg.AITemperature != 0.3 {
		t.Fatalf("expected default temperature 0.3, got %v", cfg.AITemperature)
	}
	if cfg.NATSSubject != "catalog.analyze" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.CatalogMaxPages != 50 {
		t.Fatalf("expected default max pages 50, got %d", cfg.CatalogMaxPages)
	}
	if !cfg.BreakerEnabled {
		t.Fatalf("expected breaker enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_TEMPERATURE", "0.7")
	t.Setenv("AI_MAX_TOKENS", "1200")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("ANALYSIS_PACE_EVERY", "3")

	cfg := Load()
	if cfg.AIProvider != "openai" {
		t.Fatalf("expected provider lowercased, got %q", cfg.AIProvider)
	}
	if cfg.AITemperature != 0.7 || cfg.AIMaxTokens != 1200 {
		t.Fatalf("unexpected AI overrides: %+v", cfg)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.AnalysisPaceEvery != 3 {
		t.Fatalf("expected pace every 3, got %d", cfg.AnalysisPaceEvery)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("AI_SAMPLE_CAP", "lots")
	t.Setenv("AI_TEMPERATURE", "warm")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg := Load()
	if cfg.AISampleCap != 30 || cfg.AITemperature != 0.3 || !cfg.BreakerEnabled {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}
