package config

import (
	"daybook/pkg/chat"
)

const defaultSystem = "You are a personal notes assistant. Answer from the provided notes when they are given and say when they do not contain the answer."

type chatConfig struct {
	System string `yaml:"system"`

	Temperature *float32 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

func (c *Config) registerChat(f *configFile) error {
	config := chatConfig{
		System: defaultSystem,
	}

	if !f.Chat.IsZero() {
		if err := f.Chat.Decode(&config); err != nil {
			return err
		}
	}

	options := []chat.Option{
		chat.WithCompleter(c.completer),
		chat.WithCatalog(c.Catalog),
		chat.WithStore(c.store),
		chat.WithSystem(config.System),
	}

	if c.limiter != nil {
		options = append(options, chat.WithLimiter(c.limiter))
	}

	if config.Temperature != nil {
		options = append(options, chat.WithTemperature(*config.Temperature))
	}

	if config.MaxTokens != nil {
		options = append(options, chat.WithMaxTokens(*config.MaxTokens))
	}

	service, err := chat.New(options...)

	if err != nil {
		return err
	}

	c.Service = service

	return nil
}
