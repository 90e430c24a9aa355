package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		Source string `yaml:"source"` // "file" or "postgres"
		Path   string `yaml:"path"`
	} `yaml:"questions"`
	Evaluator struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"evaluator"`
}

// Load reads YAML config from path, after a best-effort .env load. A handful
// of environment variables override the file so deployments can keep secrets
// out of it.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("QUESTIONS_PATH"); v != "" {
		cfg.Questions.Path = v
	}
	if v := os.Getenv("EVALUATOR_BASE_URL"); v != "" {
		cfg.Evaluator.BaseURL = v
	}
	if v := os.Getenv("EVALUATOR_API_KEY"); v != "" {
		cfg.Evaluator.APIKey = v
	}
	if v := os.Getenv("EVALUATOR_MODEL"); v != "" {
		cfg.Evaluator.Model = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty or
// invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
