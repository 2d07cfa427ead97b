package config

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
)

type authConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

func (c *Config) registerAuth(f *configFile) error {
	if f.Auth.IsZero() {
		return nil
	}

	var config authConfig

	if err := f.Auth.Decode(&config); err != nil {
		return err
	}

	if config.Issuer == "" {
		return errors.New("missing auth issuer")
	}

	p, err := oidc.NewProvider(context.Background(), config.Issuer)

	if err != nil {
		return err
	}

	verifierConfig := &oidc.Config{
		ClientID: config.Audience,
	}

	if config.Audience == "" {
		verifierConfig.SkipClientIDCheck = true
	}

	c.Verifier = p.Verifier(verifierConfig)

	return nil
}
