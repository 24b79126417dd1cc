package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const (
	defaultKeyringService = "cap"
	defaultKeyringKey     = "token_pair"

	BackendAuto   = "auto"
	BackendSystem = "system"
	BackendFile   = "file"
)

// KeyringConfig configures the OS credential store that backs KeyringStore.
type KeyringConfig struct {
	// Enabled selects KeyringStore over MemoryStore.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName namespaces items in the OS keyring.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// Key is the item key holding the token pair.
	Key string `yaml:"key" mapstructure:"key"`
	// Backend is auto, system or file.
	Backend string `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=auto system file"`
	// FileDir is the directory of the encrypted file backend.
	FileDir string `yaml:"file_dir" mapstructure:"file_dir"`
	// PasswordEnv names the environment variable holding the file backend
	// password.
	PasswordEnv string `yaml:"password_env" mapstructure:"password_env"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *KeyringConfig) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = defaultKeyringService
	}
	if c.Key == "" {
		c.Key = defaultKeyringKey
	}
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.PasswordEnv == "" {
		c.PasswordEnv = strings.ToUpper(c.ServiceName) + "_KEYRING_PASSWORD"
	}
}

// Validate checks that the configuration is valid.
func (c *KeyringConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Backend {
	case BackendAuto, BackendSystem, BackendFile:
	default:
		return fmt.Errorf("auth.keyring: unknown backend %q", c.Backend)
	}
	if c.ServiceName == "" {
		return fmt.Errorf("auth.keyring: service_name is required")
	}
	return nil
}

// Describe returns a human-readable one-liner for the startup summary.
func (c *KeyringConfig) Describe() string {
	if !c.Enabled {
		return "memory"
	}
	return fmt.Sprintf("keyring(%s/%s, %s)", c.ServiceName, c.Key, c.Backend)
}

func (c *KeyringConfig) keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: c.ServiceName}
	if c.Backend == BackendSystem {
		return cfg
	}

	cfg.FileDir = c.fileDir()
	cfg.FilePasswordFunc = c.filePassword
	if c.Backend == BackendFile {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func (c *KeyringConfig) fileDir() string {
	if c.FileDir != "" {
		return c.FileDir
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, c.ServiceName, "keyring")
	}
	return filepath.Join(os.TempDir(), c.ServiceName, "keyring")
}

func (c *KeyringConfig) filePassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(c.PasswordEnv); ok && password != "" {
		return password, nil
	}
	return "", fmt.Errorf("auth.keyring: set %s to unlock the file keyring", c.PasswordEnv)
}

// openKeyring can be replaced in tests.
var openKeyring = keyring.Open
