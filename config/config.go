// Package config loads bootstrap settings from an optional TOML file.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasm-bootstrap/bootstrap"
	"github.com/wippyai/wasm-bootstrap/errors"
	"github.com/wippyai/wasm-bootstrap/wasm"
)

// FileName is the configuration file the entry point looks for.
const FileName = "bootstrap.toml"

// Config holds the settings of one bootstrap.
type Config struct {
	// Module is the path of the binary module.
	Module string
	// Policy is "continue" or "escalate".
	Policy string
	// Timeout bounds initialization. Zero waits indefinitely.
	Timeout time.Duration
	// MemoryLimitPages caps guest memory in 64KB pages. Zero is the engine default.
	MemoryLimitPages uint32
	// WASI instantiates wasi_snapshot_preview1 for the module.
	WASI bool
	// KeepAlive holds a successful module until the process is signalled.
	KeepAlive bool
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Module:  "pkg/app.wasm",
		Policy:  bootstrap.PolicyContinue,
		Timeout: 30 * time.Second,
		WASI:    true,
	}
}

type fileConfig struct {
	Module           string `toml:"module"`
	Policy           string `toml:"policy"`
	Timeout          string `toml:"timeout"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
	WASI             bool   `toml:"wasi"`
	KeepAlive        bool   `toml:"keep_alive"`
}

// Load reads path and overrides defaults with the keys it defines.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load "+path)
	}

	if meta.IsDefined("module") {
		m := strings.TrimSpace(raw.Module)
		if m == "" {
			return Config{}, errors.InvalidConfig("module", fmt.Errorf("empty module path"))
		}
		cfg.Module = m
	}

	if meta.IsDefined("policy") {
		p := strings.ToLower(strings.TrimSpace(raw.Policy))
		if _, err := bootstrap.ParsePolicy(p); err != nil {
			return Config{}, err
		}
		cfg.Policy = p
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, errors.InvalidConfig("timeout", err)
		}
		if d < 0 {
			return Config{}, errors.InvalidConfig("timeout", fmt.Errorf("negative duration %s", d))
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("memory_limit_pages") {
		if raw.MemoryLimitPages > wasm.MaxMemoryPages {
			return Config{}, errors.InvalidConfig("memory_limit_pages",
				fmt.Errorf("%d pages exceeds the maximum of %d", raw.MemoryLimitPages, wasm.MaxMemoryPages))
		}
		cfg.MemoryLimitPages = raw.MemoryLimitPages
	}

	if meta.IsDefined("wasi") {
		cfg.WASI = raw.WASI
	}

	if meta.IsDefined("keep_alive") {
		cfg.KeepAlive = raw.KeepAlive
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.InvalidConfig(undecoded[0].String(), fmt.Errorf("unknown key"))
	}

	return cfg, nil
}

// LoadOptional is Load, except a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// FailurePolicy returns the policy named by c.Policy.
func (c Config) FailurePolicy() (bootstrap.FailurePolicy, error) {
	return bootstrap.ParsePolicy(c.Policy)
}
