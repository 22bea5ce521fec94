package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultName            = "alpd"
	DefaultAddr            = ":9300"
	DefaultMaxCommandBytes = 4096
)

// ServiceConfig drives the alpd decode service.
type ServiceConfig struct {
	Name            string   `toml:"name"`
	Addr            string   `toml:"addr"`
	CorsOrigins     []string `toml:"cors_origins"`
	TrustedProxies  []string `toml:"trusted_proxies"`
	MaxCommandBytes int      `toml:"max_command_bytes"`
	LogJSON         bool     `toml:"log_json"`
	// AuthToken guards /v1 when set.
	AuthToken       string   `toml:"auth_token"`
}

// DefaultServiceConfig is the config used when no file is given.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:            DefaultName,
		Addr:            DefaultAddr,
		MaxCommandBytes: DefaultMaxCommandBytes,
	}
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxCommandBytes == 0 {
		cfg.MaxCommandBytes = DefaultMaxCommandBytes
	}
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	if cfg.MaxCommandBytes < 0 {
		return fmt.Errorf("service config max_command_bytes must be positive, got %d", cfg.MaxCommandBytes)
	}
	for i, origin := range cfg.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}
