// Package config loads corpus configuration from a project-level cpack file
// and CORPUS_-prefixed environment variables.
//
// Precedence, highest to lowest: environment variables, the cpack file,
// built-in defaults. The cpack file is looked up in the pack root as
// cpack.yml, cpack.yaml or cpack.json, first match wins.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/errors"
)

const envPrefix = "CORPUS_"

// candidate cpack file names in lookup order.
var configNames = []string{"cpack.yml", "cpack.yaml", "cpack.json"}

// PackConfig holds per-project pack defaults; command-line flags override
// these at the CLI layer.
type PackConfig struct {
	Include          []string `koanf:"include"`
	Exclude          []string `koanf:"exclude"`
	Encoding         string   `koanf:"encoding"`
	Output           string   `koanf:"output"`
	MaxFileSize      int64    `koanf:"max_file_size"`
	RespectGitignore bool     `koanf:"respect_gitignore"`
	NoDefaultExcludes bool    `koanf:"no_default_excludes"`
}

// ServerConfig holds retrieval server settings.
type ServerConfig struct {
	Addr           string        `koanf:"addr"`
	CacheSize      int           `koanf:"cache_size"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// BatchConfig holds batch-run settings.
type BatchConfig struct {
	Workers int `koanf:"workers"`
}

// Config is the resolved corpus configuration.
type Config struct {
	Pack     PackConfig   `koanf:"pack"`
	Server   ServerConfig `koanf:"server"`
	Batch    BatchConfig  `koanf:"batch"`
	Catalog  string       `koanf:"catalog"`
	LogLevel string       `koanf:"log_level"`
}

// Load resolves configuration for a pack root. An empty root skips file
// lookup and loads environment and defaults only.
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	if root != "" {
		path, parser := findConfigFile(root)
		if path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.IO("failed to read config file", err).WithDetail("path", path)
			}
			if err := k.Load(rawbytes.Provider(content), parser); err != nil {
				return nil, errors.Validation("malformed config file: "+path, err).
					WithDetail("path", path)
			}
		}
	}

	// CORPUS_SERVER_ADDR -> server.addr, CORPUS_LOG_LEVEL -> log_level.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		for _, section := range []string{"pack", "server", "batch"} {
			if strings.HasPrefix(key, section+"_") {
				return section + "." + strings.TrimPrefix(key, section+"_")
			}
		}
		return key
	}), nil); err != nil {
		return nil, errors.Internal("failed to load environment configuration", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Validation("invalid configuration", err)
	}

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the first existing cpack file under root and the
// parser for its format.
func findConfigFile(root string) (string, koanf.Parser) {
	for _, name := range configNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if strings.HasSuffix(name, ".json") {
			return path, json.Parser()
		}
		return path, yaml.Parser()
	}
	return "", nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pack.Encoding == "" {
		cfg.Pack.Encoding = "plain"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8750"
	}
	if cfg.Server.CacheSize == 0 {
		cfg.Server.CacheSize = 16
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (cfg *Config) validate() error {
	if _, err := bundle.ParseEncoding(cfg.Pack.Encoding); err != nil {
		return err
	}
	if cfg.Batch.Workers < 1 {
		return errors.Validation("batch workers must be at least 1", nil).
			WithDetail("workers", strconv.Itoa(cfg.Batch.Workers))
	}
	return nil
}
