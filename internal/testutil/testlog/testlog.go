// Package testlog sets up the shared logger for package tests.
package testlog

import (
	"bytes"
	"testing"

	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/rs/zerolog"
)

func Start(t *testing.T) {
	t.Helper()
	logs.ConfigureTests()
	logs.Infof("test=%s", t.Name())
}

// Capture routes the shared logger into a JSON line buffer until the test
// ends, then restores the previous logger.
func Capture(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logs.Logger()
	logs.SetOutput(&buf, logs.Config{Level: level, Bypass: true})
	t.Cleanup(func() { logs.Swap(prev) })
	return &buf
}
