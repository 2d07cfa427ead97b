package config

import (
	"fmt"

	"daybook/pkg/store"
)

type stateConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

func (c *Config) registerState(f *configFile) error {
	var config stateConfig

	if !f.State.IsZero() {
		if err := f.State.Decode(&config); err != nil {
			return err
		}
	}

	switch config.Backend {
	case "", "file":
		path := config.Path

		if path == "" {
			path = "state"
		}

		s, err := store.NewFile(path)

		if err != nil {
			return err
		}

		c.store = s

	case "sqlite":
		path := config.Path

		if path == "" {
			path = "state.db"
		}

		s, err := store.NewSQLite(path)

		if err != nil {
			return err
		}

		c.store = s

	default:
		return fmt.Errorf("unknown state backend %q", config.Backend)
	}

	return nil
}
