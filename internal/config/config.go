package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"learnhub-quiz-service/internal/domain"
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
		URL  string `yaml:"url"`
		Seed bool   `yaml:"seed"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL           string `yaml:"ttl"`
		Scoring       string `yaml:"scoring"`
		TickEvery     string `yaml:"tick_every"`
		ReportTimeout string `yaml:"report_timeout"`
		IdleTimeout   string `yaml:"idle_timeout"`
	} `yaml:"quiz"`
	Auth struct {
		Secret    string `yaml:"secret"`
		TokenTTL  string `yaml:"token_ttl"`
		AutoLogin string `yaml:"auto_login"`
	} `yaml:"auth"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// ScoringMode maps the quiz.scoring setting; anything but "points" scores by count.
func (c Config) ScoringMode() domain.ScoringMode {
	if c.Quiz.Scoring == string(domain.ScoreByPoints) {
		return domain.ScoreByPoints
	}
	return domain.ScoreByCount
}
