package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatYAML = "yaml"
)

type cliConfig struct {
	Format   string
	Strict   bool
	LogLevel zerolog.Level
}

type fileConfig struct {
	Format   string `toml:"format"`
	Strict   bool   `toml:"strict"`
	LogLevel string `toml:"log_level"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Format:   FormatJSON,
		LogLevel: zerolog.InfoLevel,
	}
}

func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load alpctl config: %w", err)
	}

	if meta.IsDefined("format") {
		format, err := parseFormat(raw.Format)
		if err != nil {
			return cliConfig{}, err
		}
		cfg.Format = format
	}

	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logs.ParseLevel(raw.LogLevel)
		if !ok {
			return cliConfig{}, fmt.Errorf("parse log_level: unknown level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// logConfig keeps the runtime profile and its env overrides, replacing only
// the level.
func (c cliConfig) logConfig() logs.Config {
	lc := logs.ProfileConfig(logs.ProfileRuntime)
	lc.Level = c.LogLevel
	return lc
}

func parseFormat(raw string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case FormatJSON, FormatText, FormatYAML:
		return v, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json|text|yaml)", raw)
	}
}
