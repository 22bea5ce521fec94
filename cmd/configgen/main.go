package main

import (
	"flag"
	"log"

	"github.com/danmuck/d7alp/internal/config"
)

func defaultPath(kind string) string {
	switch kind {
	case "alpd":
		return "cmd/alpd/config.toml"
	case "alpctl":
		return "cmd/alpctl/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

func main() {
	kind := flag.String("kind", "alpd", "config kind: alpd|alpctl")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing alpd config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if *kind != "alpd" {
			log.Fatalf("validation is only available for alpd configs")
		}
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}
		if _, err := config.LoadServiceConfig(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
