// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic: collaborators are built through
// package-level factory variables that tests replace.
package handlers

import (
	"errors"
	"fmt"
	"os"

	"github.com/imamik/tzchain/internal/config"
)

var (
	// loadConfigFile loads the tool configuration (for testing injection).
	loadConfigFile = config.Load

	// statFile checks for the default configuration file (for testing injection).
	statFile = os.Stat
)

// loadConfig loads the configuration at configPath. An empty path uses
// tzchain.yaml when present, else environment variables only.
func loadConfig(configPath string) (*config.File, error) {
	if configPath == "" {
		if _, err := statFile(config.DefaultConfigFilename); err == nil {
			configPath = config.DefaultConfigFilename
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to check for %s: %w", config.DefaultConfigFilename, err)
		}
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
