package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ProjectConfigFile is the name of the dataset-level config file.
const ProjectConfigFile = "negex.yaml"

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load builds the configuration for the dataset rooted at dir:
// 1. Default config
// 2. negex.yaml in dir, if present
// 3. explicit, if non-empty (a missing explicit file is an error)
func (l *Loader) Load(dir, explicit string) (*Config, error) {
	config := DefaultConfig()

	projectPath := filepath.Join(dir, ProjectConfigFile)
	if projectConfig, err := LoadFromFile(projectPath); err == nil {
		l.logger.Debug("Loaded project config", slog.String("path", projectPath))
		config.Merge(projectConfig)
	} else if !os.IsNotExist(err) {
		return nil, err
	} else {
		l.logger.Debug("No project config found", slog.String("path", projectPath))
	}

	if explicit != "" {
		explicitConfig, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
		config.Merge(explicitConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
