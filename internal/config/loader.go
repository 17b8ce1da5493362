package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in every search location.
const FileName = "automata.yaml"

// Load returns the simulation configuration.
// Search order: customPath -> ~/.automata/configs/automata.yaml ->
// ./configs/automata.yaml -> embedded default.
// Values missing from a file keep their defaults. Only an explicit
// customPath turns read or parse failures into errors.
func Load(customPath string) (Simulation, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Default(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return Default(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range searchPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := parse(defaultYAML)
	if err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// parse decodes data over the defaults and validates the result.
func parse(data []byte) (Simulation, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func searchPaths() []string {
	var paths []string
	if p := userConfigPath(FileName); p != "" {
		paths = append(paths, p)
	}
	return append(paths, filepath.Join("configs", FileName))
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".automata", "configs", filename)
}
