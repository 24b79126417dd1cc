// Package config loads service configuration with Viper.
//
// Values come from a YAML/JSON/TOML file, then from environment variables
// carrying the loader's prefix (CAP_ by default). A .env file found next to
// the configuration is loaded into the environment first.
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("orders", &cfg, config.WithConfigFile("orders.yml"))
//
// CAP_SERVER_RETRY_MAX_ATTEMPTS=5 overrides server.retry.max_attempts.
package config
