package main

import (
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrap(err, "parse duration")
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Topic             string   `yaml:"topic"`
	Nick              string   `yaml:"nick"`
	ConnectionFactory string   `yaml:"connection_factory,omitempty"`
	PresenceInterval  Duration `yaml:"presence_interval,omitempty"`
	LogFile           string   `yaml:"log_file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Topic:            "chat.lobby",
		Nick:             "anon-" + watermill.NewShortUUID(),
		PresenceInterval: Duration(30 * time.Second),
	}
}

// LoadConfig reads a YAML config file, filling defaults for anything the
// file leaves out. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}
	if cfg.Topic == "" {
		cfg.Topic = "chat.lobby"
	}
	if cfg.Nick == "" {
		cfg.Nick = "anon-" + watermill.NewShortUUID()
	}
	if cfg.PresenceInterval <= 0 {
		cfg.PresenceInterval = Duration(30 * time.Second)
	}
	return cfg, nil
}
