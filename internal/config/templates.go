package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "alpd":
		return serviceTemplate, nil
	case "alpctl":
		return cliTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serviceTemplate = `name = "alpd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
trusted_proxies = []
max_command_bytes = 4096
log_json = false
auth_token = ""
`

const cliTemplate = `format = "json"
strict = false
log_level = "info"
`
