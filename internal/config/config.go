// internal/config/config.go
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Logger struct {
		Mode       string `yaml:"mode"` // production | development
		FileEnable bool   `yaml:"file_enable"`
		Filename   string `yaml:"filename"`
	} `yaml:"logger"`

	Database struct {
		Driver string `yaml:"driver"` // sqlite | pgx
		DSN    string `yaml:"dsn"`    // empty = <data_dir>/pricehunt.db
	} `yaml:"database"`

	Browser struct {
		Headless       bool   `yaml:"headless"`
		BinPath        string `yaml:"bin_path"`
		Proxy          string `yaml:"proxy"`
		Locale         string `yaml:"locale"`
		Timezone       string `yaml:"timezone"`
		UserAgent      string `yaml:"user_agent"`
		ViewportWidth  int    `yaml:"viewport_width"`
		ViewportHeight int    `yaml:"viewport_height"`
	} `yaml:"browser"`

	Scrape struct {
		Marketplaces   []string `yaml:"marketplaces"`
		MaxPages       int      `yaml:"max_pages"`
		MaxResults     int      `yaml:"max_results"`
		NavTimeoutSecs int      `yaml:"nav_timeout_seconds"`
		NavRetries     int      `yaml:"nav_retries"`
		RetryBackoffMs int      `yaml:"retry_backoff_ms"`
		HostRPS        float64  `yaml:"host_rps"`
	} `yaml:"scrape"`

	Match struct {
		Threshold    int      `yaml:"threshold"`
		BatchSize    int      `yaml:"batch_size"`
		Retries      int      `yaml:"retries"`
		RetryDelayMs int      `yaml:"retry_delay_ms"`
		Exclude      []string `yaml:"exclude"` // extends the built-in vocabulary
	} `yaml:"match"`

	LLM struct {
		Provider       string  `yaml:"provider"` // openai | openrouter | groq | ollama | custom
		Model          string  `yaml:"model"`
		BaseURL        string  `yaml:"base_url"`
		KeyringAccount string  `yaml:"keyring_account"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSecs    int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Cache struct {
		Backend  string `yaml:"backend"` // sql | redis | none
		RedisURL string `yaml:"redis_url"`
	} `yaml:"cache"`

	Jobs struct {
		Workers          int `yaml:"workers"`
		QueueSize        int `yaml:"queue_size"`
		ProgressEverySec int `yaml:"progress_every_seconds"`
	} `yaml:"jobs"`
}

// Default returns a config with every knob set; Load overlays the file on it.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.App.DataDir = "."
	cfg.Logger.Mode = "development"
	cfg.Logger.Filename = "pricehunt.log"
	cfg.Database.Driver = "sqlite"
	cfg.Browser.Headless = true
	cfg.Browser.Locale = "pt-BR"
	cfg.Browser.Timezone = "America/Sao_Paulo"
	cfg.Browser.ViewportWidth = 1366
	cfg.Browser.ViewportHeight = 768
	cfg.Scrape.Marketplaces = []string{"mercadolivre", "amazon", "magalu", "americanas", "casasbahia", "kabum", "olx"}
	cfg.Scrape.MaxPages = 3
	cfg.Scrape.MaxResults = 100
	cfg.Scrape.NavTimeoutSecs = 45
	cfg.Scrape.NavRetries = 3
	cfg.Scrape.RetryBackoffMs = 2000
	cfg.Scrape.HostRPS = 0.5
	cfg.Match.Threshold = 50
	cfg.Match.BatchSize = 5
	cfg.Match.Retries = 3
	cfg.Match.RetryDelayMs = 2000
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.KeyringAccount = "pricehunt:llm"
	cfg.LLM.Temperature = 0.1
	cfg.LLM.TimeoutSecs = 60
	cfg.Cache.Backend = "sql"
	cfg.Jobs.Workers = 2
	cfg.Jobs.QueueSize = 16
	cfg.Jobs.ProgressEverySec = 2
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PRICEHUNT_DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("PRICEHUNT_REDIS_URL")); v != "" {
		cfg.Cache.RedisURL = v
	}
}
