package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes the coordinator. Everything has a default so the service
// runs without a config file.
type Config struct {
	Game struct {
		CountdownStart      int `yaml:"countdown_start"`
		CountdownIntervalMS int `yaml:"countdown_interval_ms"`
		ScoreDecayMS        int `yaml:"score_decay_ms"`
	} `yaml:"game"`
	Streams struct {
		KeepaliveSec    int `yaml:"keepalive_sec"`
		WriteTimeoutSec int `yaml:"write_timeout_sec"`
	} `yaml:"streams"`
	Events struct {
		Enabled bool   `yaml:"enabled"`
		NATSURL string `yaml:"nats_url"`
	} `yaml:"events"`
}

func defaultConfig() *Config {
	var config Config
	config.Game.CountdownStart = 5
	config.Game.CountdownIntervalMS = 1000
	config.Game.ScoreDecayMS = 10000
	config.Streams.KeepaliveSec = 15
	config.Streams.WriteTimeoutSec = 10
	return &config
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func (c *Config) countdownInterval() time.Duration {
	return time.Duration(c.Game.CountdownIntervalMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
