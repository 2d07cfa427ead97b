package config

import (
	"bytes"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"daybook/pkg/chat"
	"daybook/pkg/provider"
	"daybook/pkg/store"
	"daybook/pkg/vault"
)

type Config struct {
	Address string

	Service *chat.Service

	Catalog *vault.Catalog
	Watcher *vault.Watcher

	Verifier *oidc.IDTokenVerifier

	completer provider.Completer
	limiter   *rate.Limiter
	store     store.Store
}

func Parse(path string) (*Config, error) {
	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	c := &Config{
		Address: ":8080",
	}

	if file.Address != "" {
		c.Address = file.Address
	}

	if err := c.registerVault(file); err != nil {
		return nil, err
	}

	if err := c.registerProvider(file); err != nil {
		return nil, err
	}

	if err := c.registerState(file); err != nil {
		return nil, err
	}

	if err := c.registerAuth(file); err != nil {
		return nil, err
	}

	if err := c.registerChat(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Vault yaml.Node `yaml:"vault"`

	Model     string    `yaml:"model"`
	Providers yaml.Node `yaml:"providers"`

	State yaml.Node `yaml:"state"`

	Chat yaml.Node `yaml:"chat"`

	Auth yaml.Node `yaml:"auth"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}
