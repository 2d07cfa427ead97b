package config

import (
	"errors"
	"fmt"

	"daybook/pkg/provider"
	"daybook/pkg/provider/anthropic"
	"daybook/pkg/provider/bedrock"
	"daybook/pkg/provider/cohere"
	"daybook/pkg/provider/google"
	"daybook/pkg/provider/ollama"
	"daybook/pkg/provider/openai"
	"daybook/pkg/provider/replicate"
)

type providerConfig struct {
	APIKey string `yaml:"api_key"`
	Token  string `yaml:"token"`

	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`

	Limit *int `yaml:"limit"`
}

func (c *Config) registerProvider(f *configFile) error {
	if f.Model == "" {
		return errors.New("missing model")
	}

	model, ok := provider.Lookup(f.Model)

	if !ok {
		return fmt.Errorf("unknown model %q", f.Model)
	}

	configs := map[provider.Kind]providerConfig{}

	if !f.Providers.IsZero() {
		if err := f.Providers.Decode(&configs); err != nil {
			return err
		}
	}

	config := configs[model.Kind]

	var completer provider.Completer
	var err error

	switch model.Kind {
	case provider.KindAnthropic:
		completer, err = anthropic.New(model.ID, config.APIKey)

	case provider.KindOpenAI:
		completer, err = openai.New(model.ID, config.APIKey)

	case provider.KindGoogle:
		completer, err = google.New(model.ID, config.APIKey)

	case provider.KindOllama:
		completer, err = ollama.New(model.ID, config.Endpoint)

	case provider.KindBedrock:
		completer, err = bedrock.New(model.ID, config.Region)

	case provider.KindCohere:
		completer, err = cohere.New(model.ID, config.APIKey)

	case provider.KindReplicate:
		token := config.Token

		if token == "" {
			token = config.APIKey
		}

		completer, err = replicate.New(model.ID, token)

	default:
		err = fmt.Errorf("unsupported provider %q", model.Kind)
	}

	if err != nil {
		return err
	}

	c.completer = completer
	c.limiter = createLimiter(config.Limit)

	return nil
}
