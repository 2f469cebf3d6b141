package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wasm-bootstrap/wasm/wasmtest"
)

func setup(t *testing.T, cfg string, mod []byte) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	if cfg != "" {
		if err := os.WriteFile(filepath.Join(dir, "bootstrap.toml"), []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if mod != nil {
		if err := os.MkdirAll(filepath.Join(dir, "pkg"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "pkg", "app.wasm"), mod, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		cfg      string
		mod      []byte
		wantCode int
		wantLogs int
	}{
		{
			name:     "default config, valid module",
			mod:      (&wasmtest.Module{}).Encode(),
			wantCode: 0,
			wantLogs: 0,
		},
		{
			name:     "missing module is absorbed",
			wantCode: 0,
			wantLogs: 1,
		},
		{
			name:     "corrupt module is absorbed",
			mod:      []byte("compile error: bad magic number"),
			wantCode: 0,
			wantLogs: 1,
		},
		{
			name:     "escalate exits non-zero",
			cfg:      `policy = "escalate"`,
			wantCode: 1,
			wantLogs: 1,
		},
		{
			name:     "escalate with a valid module exits zero",
			cfg:      `policy = "escalate"`,
			mod:      (&wasmtest.Module{}).Encode(),
			wantCode: 0,
			wantLogs: 0,
		},
		{
			name:     "memory limit above 4GB is rejected",
			cfg:      `memory_limit_pages = 70000`,
			mod:      (&wasmtest.Module{}).Encode(),
			wantCode: 1,
			wantLogs: 1,
		},
		{
			name:     "invalid config",
			cfg:      `timeout = "later"`,
			wantCode: 1,
			wantLogs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, tt.cfg, tt.mod)
			core, logs := observer.New(zapcore.ErrorLevel)

			code := run(testContext(t), zap.New(core))

			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d", code, tt.wantCode)
			}
			if logs.Len() != tt.wantLogs {
				t.Errorf("got %d diagnostic entries, want %d: %v", logs.Len(), tt.wantLogs, logs.All())
			}
		})
	}
}

// testContext stands in for testing.T.Context (Go 1.24+): the context is
// cancelled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// chdir stands in for testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
