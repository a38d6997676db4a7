package config

import (
	"fmt"
	"sync"
)

// The process-wide configuration. The daemon installs it once at startup
// and swaps it on hot reload; everything else reads it through GetConfig.
var (
	globalConfig *Config
	configMutex  sync.RWMutex
	initOnce     sync.Once
)

// Initialize loads configuration from path, applies SLUICE_* environment
// overrides, and installs the result as the process-wide configuration.
// Only the first call does any work; later calls return nil without
// touching the installed configuration.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		SetConfig(cfg)
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before
// Initialize has succeeded. Safe for concurrent use.
//
// Library consumers should prefer passing *Config explicitly; the
// singleton exists for the daemon and its command helpers.
func GetConfig() *Config {
	configMutex.RLock()
	cfg := globalConfig
	configMutex.RUnlock()
	return cfg
}

// SetConfig replaces the process-wide configuration. The daemon's file
// watcher calls this with an already-validated configuration when the
// file on disk changes; tests use it to install fixtures.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig loads the configuration at path and, if loading and
// validation succeed, installs it process-wide. On error the previously
// installed configuration stays in place.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	SetConfig(cfg)
	return nil
}

// MustGetConfig returns the process-wide configuration and panics if it
// has not been installed. For code paths that only run after a
// successful startup; elsewhere prefer GetConfig and a nil check.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
