package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/danmuck/d7alp/internal/testutil/testlog"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDecodeJSON(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, "decode", "B4 42 41 00 00 08 81 04 02 03 C0")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dec := json.NewDecoder(strings.NewReader(out))
	var raw struct {
		Size    int `json:"size"`
		Actions []struct {
			Op string `json:"op"`
		} `json:"actions"`
	}
	if err := dec.Decode(&raw); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if raw.Size != 11 || len(raw.Actions) != 4 || raw.Actions[0].Op != "RequestTag" {
		t.Fatalf("unexpected output: %+v", raw)
	}
	logs.Logf("alpctl/decode: %d actions", len(raw.Actions))
}

func TestDecodeStrict(t *testing.T) {
	testlog.Start(t)
	logged := testlog.Capture(t, zerolog.WarnLevel)
	if _, err := run(t, "decode", "80 02 09 04"); err != nil {
		t.Fatalf("non-strict partial decode should succeed: %v", err)
	}
	out, err := run(t, "--strict", "--format", "text", "decode", "80 02 09 04")
	if !errors.Is(err, ErrPartialDecode) {
		t.Fatalf("expected ErrPartialDecode, got %v", err)
	}
	if !strings.Contains(out, "Nop") || !strings.Contains(out, "error missing_bytes @3") {
		t.Fatalf("unexpected text output:\n%s", out)
	}
	if !strings.Contains(logged.String(), "missing_bytes at offset 3 after 2 action(s)") {
		t.Fatalf("expected partial decode warning, got %q", logged.String())
	}
}

func TestDecodeYAMLFromConfig(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, "--config", "ex.config.toml", "decode", "B0")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var body struct {
		Size    int `yaml:"size"`
		Actions []struct {
			Op string `yaml:"op"`
		} `yaml:"actions"`
	}
	if err := yaml.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("parse yaml: %v\n%s", err, out)
	}
	if body.Size != 1 || len(body.Actions) != 1 || body.Actions[0].Op != "Chunk" {
		t.Fatalf("unexpected yaml output: %+v", body)
	}
}

func TestVarintAndSize(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, "varint", "0", "64", "0x3FFFFFFF")
	if err != nil {
		t.Fatalf("varint: %v", err)
	}
	want := "0\t00\n64\t40 40\n1073741823\tFF FF FF FF\n"
	if out != want {
		t.Fatalf("varint output:\n%q\nwant\n%q", out, want)
	}
	if _, err := run(t, "varint", "1073741824"); err == nil {
		t.Fatalf("expected error above varint max")
	}

	out, err = run(t, "size", "80 40 00 FF")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if out != "value=16384 size=3\n" {
		t.Fatalf("size output: %q", out)
	}
	if _, err := run(t, "size", "80"); err == nil {
		t.Fatalf("expected missing bytes error")
	}
}

func TestBadInput(t *testing.T) {
	testlog.Start(t)
	if _, err := run(t, "decode", "zz"); err == nil {
		t.Fatalf("expected hex error")
	}
	if _, err := run(t, "--format", "xml", "decode", "80"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestIfaceRevisions(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, "iface", "config", "--revision", "1.2", "02 23 34 48 00 15")
	if err != nil {
		t.Fatalf("iface config: %v", err)
	}
	var cfg struct {
		Addressee struct {
			GroupCondition int  `json:"GroupCondition"`
			UseVID         bool `json:"UseVID"`
			Address        int  `json:"Address"`
		} `json:"Addressee"`
	}
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if cfg.Addressee.GroupCondition != 1 || !cfg.Addressee.UseVID || cfg.Addressee.Address != 0x15 {
		t.Fatalf("unexpected 1.2 config: %+v", cfg)
	}

	// The same byte is an unknown NLS method in the base layout.
	if _, err := run(t, "iface", "config", "02 23 34 48 00 15"); err == nil {
		t.Fatalf("expected base revision to reject use_vid bit")
	}

	out, err = run(t, "--format", "text", "iface", "status", "--revision", "1.2",
		"01 0123 02 03 04 05 06 07 0800 0900 10 01")
	if err != nil {
		t.Fatalf("iface status: %v", err)
	}
	if !strings.Contains(out, "RespTo:8 Fof:9") {
		t.Fatalf("unexpected status output: %q", out)
	}
	if _, err := run(t, "iface", "status", "--revision", "2.0", "00"); err == nil {
		t.Fatalf("expected unknown revision error")
	}
}
