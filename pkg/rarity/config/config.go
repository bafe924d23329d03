package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/score"
)

// Config holds settings shared by the rarity commands
type Config struct {
	Algorithm  string `yaml:"algorithm"`
	Workers    int    `yaml:"workers"`
	DBPath     string `yaml:"db_path"`
	ListenAddr string `yaml:"listen_addr"`
	MaxConns   int    `yaml:"max_conns"`
	CacheSize  int    `yaml:"cache_size"`
	TopK       int    `yaml:"top_k"`
}

// Default returns the baseline configuration
func Default() Config {
	return Config{
		Algorithm:  string(score.AlgorithmStatistical),
		Workers:    4,
		ListenAddr: ":8080",
		MaxConns:   256,
		CacheSize:  128,
	}
}

// Load reads a YAML file over the defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from RARITY_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("RARITY_ALGORITHM"); v != "" {
		c.Algorithm = v
	}
	if v := os.Getenv("RARITY_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("RARITY_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RARITY_WORKERS", &c.Workers},
		{"RARITY_MAX_CONNS", &c.MaxConns},
		{"RARITY_CACHE_SIZE", &c.CacheSize},
		{"RARITY_TOP_K", &c.TopK},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", e.key, v, internalerr.ErrInvalidConfig)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks field ranges and the algorithm name
func (c Config) Validate() error {
	if _, err := score.ForAlgorithm(score.Algorithm(c.Algorithm)); err != nil {
		return fmt.Errorf("algorithm %q: %w", c.Algorithm, internalerr.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("max_conns must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Scorer returns the scorer named by Algorithm
func (c Config) Scorer() (score.Scorer, error) {
	return score.ForAlgorithm(score.Algorithm(c.Algorithm))
}
