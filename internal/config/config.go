// Package config loads greppy's configuration the way the rest of the
// codebase expects it: a struct of nested, yaml-tagged sections with
// sane defaults, a config file, and environment variable overrides
// layered on top via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all tunables for greppy's subsystems.
type Config struct {
	Home      HomeConfig      `yaml:"home"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HomeConfig struct {
	Dir string `yaml:"dir"`
}

type ChunkingConfig struct {
	MaxLines     int `yaml:"max_lines"`
	OverlapLines int `yaml:"overlap_lines"`
}

type IndexingConfig struct {
	MaxFileSizeMB   int `yaml:"max_file_size_mb"`
	ParallelWorkers int `yaml:"parallel_workers"`
	WriterHeapMB    int `yaml:"writer_heap_mb"`
	EmbedBatchSize  int `yaml:"embed_batch_size"`
	ChannelCapacity int `yaml:"channel_capacity"`
}

type SearchConfig struct {
	MaxResults   int     `yaml:"max_results"`
	SymbolBoost  float64 `yaml:"symbol_boost"`
	AllowExpand  bool    `yaml:"allow_expand"`
}

type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	Capacity int  `yaml:"capacity"`
}

type DaemonConfig struct {
	SocketPath string `yaml:"socket_path"`
	Port       int    `yaml:"port"`
}

type WatcherConfig struct {
	DebounceMS    int `yaml:"debounce_ms"`
	EventThreshold int `yaml:"event_threshold"`
	ChannelCapacity int `yaml:"channel_capacity"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns greppy's out-of-the-box configuration.
func Default() *Config {
	return &Config{
		Home: HomeConfig{
			Dir: "~/.greppy",
		},
		Chunking: ChunkingConfig{
			MaxLines:     50,
			OverlapLines: 5,
		},
		Indexing: IndexingConfig{
			MaxFileSizeMB:   1,
			ParallelWorkers: runtime.NumCPU(),
			WriterHeapMB:    50,
			EmbedBatchSize:  64,
			ChannelCapacity: 1000,
		},
		Search: SearchConfig{
			MaxResults:  20,
			SymbolBoost: 3.0,
			AllowExpand: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
		},
		Daemon: DaemonConfig{
			SocketPath: "",
			Port:       0,
		},
		Watcher: WatcherConfig{
			DebounceMS:      500,
			EventThreshold:  100,
			ChannelCapacity: 64,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Load resolves configuration from defaults, an optional config file
// (GREPPY_CONFIG, or ${HOME_DIR}/config.yaml), and GREPPY_* environment
// variables, in that order of increasing priority.
func Load() (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GREPPY")
	v.AutomaticEnv()

	if path := os.Getenv("GREPPY_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := HomeDir(cfg)
		if err == nil {
			v.SetConfigFile(filepath.Join(home, "config.yaml"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if os.IsNotExist(err) {
				// fine: no config file present, defaults stand
			} else {
				return nil, fmt.Errorf("loading config: %w", err)
			}
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)

	cfg.Home.Dir = expandPath(cfg.Home.Dir)
	return cfg, nil
}

// applyEnvOverrides binds the three environment variables the spec
// names explicitly; viper's AutomaticEnv only covers keys that already
// exist in the config tree, so the home/socket/port overrides are
// applied directly here to guarantee they always take effect.
func applyEnvOverrides(cfg *Config) {
	if home := os.Getenv("GREPPY_HOME"); home != "" {
		cfg.Home.Dir = home
	}
	if sock := os.Getenv("GREPPY_DAEMON_SOCKET"); sock != "" {
		cfg.Daemon.SocketPath = sock
	}
	if port := os.Getenv("GREPPY_DAEMON_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Daemon.Port)
	}
}

// HomeDir resolves the home directory greppy keeps its daemon files
// and indices under, independent of a fully-loaded Config (used while
// still locating the config file itself).
func HomeDir(cfg *Config) (string, error) {
	if env := os.Getenv("GREPPY_HOME"); env != "" {
		return expandPath(env), nil
	}
	if cfg != nil && cfg.Home.Dir != "" {
		return expandPath(cfg.Home.Dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".greppy"), nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
