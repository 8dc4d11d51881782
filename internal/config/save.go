package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var knownDrivers = map[string]bool{"sqlite": true, "pgx": true}
var knownCaches = map[string]bool{"sql": true, "redis": true, "none": true}
var knownProviders = map[string]bool{"openai": true, "openrouter": true, "groq": true, "ollama": true, "custom": true}

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if !knownDrivers[cfg.Database.Driver] {
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or pgx", cfg.Database.Driver))
	}
	if cfg.Database.Driver == "pgx" && strings.TrimSpace(cfg.Database.DSN) == "" {
		errs = append(errs, "database.dsn is required when database.driver=pgx")
	}

	if len(cfg.Scrape.Marketplaces) == 0 {
		errs = append(errs, "scrape.marketplaces must list at least one marketplace")
	}
	for i, m := range cfg.Scrape.Marketplaces {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, fmt.Sprintf("scrape.marketplaces[%d] cannot be empty", i))
		}
	}
	if cfg.Scrape.MaxPages < 1 {
		errs = append(errs, "scrape.max_pages must be >= 1")
	}
	if cfg.Scrape.MaxResults < 1 {
		errs = append(errs, "scrape.max_results must be >= 1")
	}
	if cfg.Scrape.NavTimeoutSecs < 1 {
		errs = append(errs, "scrape.nav_timeout_seconds must be >= 1")
	}
	if cfg.Scrape.NavRetries < 1 {
		errs = append(errs, "scrape.nav_retries must be >= 1")
	}
	if cfg.Scrape.HostRPS <= 0 {
		errs = append(errs, "scrape.host_rps must be > 0")
	}

	// search_results enforces match_score > 50.
	if cfg.Match.Threshold < 50 || cfg.Match.Threshold > 100 {
		errs = append(errs, "match.threshold must be 50..100")
	}
	if cfg.Match.BatchSize < 1 {
		errs = append(errs, "match.batch_size must be >= 1")
	}
	if cfg.Match.Retries < 1 {
		errs = append(errs, "match.retries must be >= 1")
	}

	if !knownProviders[cfg.LLM.Provider] {
		errs = append(errs, fmt.Sprintf("llm.provider %q is not supported", cfg.LLM.Provider))
	}
	if cfg.LLM.Provider == "custom" && strings.TrimSpace(cfg.LLM.BaseURL) == "" {
		errs = append(errs, "llm.base_url is required when llm.provider=custom")
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		errs = append(errs, "llm.model is required")
	}

	if !knownCaches[cfg.Cache.Backend] {
		errs = append(errs, fmt.Sprintf("cache.backend %q must be sql, redis or none", cfg.Cache.Backend))
	}
	if cfg.Cache.Backend == "redis" && strings.TrimSpace(cfg.Cache.RedisURL) == "" {
		errs = append(errs, "cache.redis_url is required when cache.backend=redis")
	}

	if cfg.Jobs.Workers < 1 {
		errs = append(errs, "jobs.workers must be >= 1")
	}
	if cfg.Jobs.QueueSize < 1 {
		errs = append(errs, "jobs.queue_size must be >= 1")
	}
	// <= 0 falls back to the default interval
	if cfg.Jobs.ProgressEverySec > 0 && cfg.Jobs.ProgressEverySec < 2 {
		errs = append(errs, "jobs.progress_every_seconds must be >= 2")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
