package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix is the environment variable prefix used by LoadConfig.
const DefaultEnvPrefix = "CAP"

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path
	EnvFile    string // explicit .env file path
	EnvPrefix  string
	SearchDirs []string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path. A missing explicit
// file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix replaces DefaultEnvPrefix. An empty prefix binds every
// environment variable.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithSearchDirs replaces the directories searched for config and .env
// files.
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(lc *LoaderConfig) { lc.SearchDirs = dirs }
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolve finds the config and .env files for a service. Explicit paths
// win; otherwise each search dir is tried for "<service>.yml",
// "config.yml", ".env.<service>" and ".env".
func (lc LoaderConfig) Resolve(serviceName string) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = lc.find(serviceName+".yml", serviceName+".yaml", "config.yml", "config.yaml")
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = lc.find(".env."+serviceName, ".env")
	}
	return resolved
}

func (lc LoaderConfig) find(names ...string) string {
	for _, name := range names {
		for _, dir := range lc.SearchDirs {
			path := filepath.Join(dir, name)
			if lc.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// LoadConfig loads configuration for a service into cfg. The .env file
// is applied to the process environment before prefixed variables are
// bound, so it never overrides variables that are already set.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{
		FileSystem: OSFileSystem{},
		EnvPrefix:  DefaultEnvPrefix,
		SearchDirs: []string{".", "config", filepath.Join("cmd", serviceName)},
	}
	for _, opt := range opts {
		opt(&lc)
	}

	files := lc.Resolve(serviceName)
	v := viper.New()

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return fmt.Errorf("config file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", files.EnvFile, err)
		}
	}

	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every prefixed variable under each nested key it could
// name, since an underscore may separate sections or words:
// CAP_REDIS_KEY_PREFIX sets redis.key.prefix, redis.key_prefix and
// redis_key_prefix; the unmarshal target decides which one matters.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	if prefix != "" {
		prefix = strings.ToUpper(prefix) + "_"
	}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, prefix)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns every split of the underscore-separated key into
// dotted sections, keeping underscores inside the final segment.
func envKeyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	var variants []string
	var walk func(prefix string, rest []string)
	walk = func(prefix string, rest []string) {
		for i := 1; i <= len(rest); i++ {
			segment := strings.Join(rest[:i], "_")
			key := segment
			if prefix != "" {
				key = prefix + "." + segment
			}
			if i == len(rest) {
				variants = append(variants, key)
				continue
			}
			walk(key, rest[i:])
		}
	}
	walk("", parts)
	return variants
}
