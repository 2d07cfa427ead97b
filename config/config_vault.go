package config

import (
	"errors"

	"daybook/pkg/vault"
)

type vaultConfig struct {
	Path string `yaml:"path"`

	Extensions []string `yaml:"extensions"`

	Watch *bool `yaml:"watch"`
}

func (c *Config) registerVault(f *configFile) error {
	if f.Vault.IsZero() {
		return errors.New("missing vault configuration")
	}

	var config vaultConfig

	if err := f.Vault.Decode(&config); err != nil {
		return err
	}

	if config.Path == "" {
		return errors.New("missing vault path")
	}

	var options []vault.Option

	if len(config.Extensions) > 0 {
		options = append(options, vault.WithExtensions(config.Extensions...))
	}

	fs, err := vault.NewFS(config.Path, options...)

	if err != nil {
		return err
	}

	c.Catalog = vault.NewCatalog(fs)

	if config.Watch == nil || *config.Watch {
		watcher, err := vault.NewWatcher(config.Path, c.Catalog.Invalidate)

		if err != nil {
			return err
		}

		c.Watcher = watcher
	}

	return nil
}
