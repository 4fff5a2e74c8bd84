package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/0xERR0R/argus/log"

	"github.com/creasty/defaults"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const secretObfuscator = "********"

// Configurable is a config section which can describe itself
type Configurable interface {
	// IsEnabled returns true when the component using this config is enabled.
	IsEnabled() bool

	// LogConfig logs the receiver's configuration.
	LogConfig(*logrus.Entry)
}

// Ports listen addresses
type Ports struct {
	// Proxy address the intercepting proxy listens on
	Proxy string `yaml:"proxy" default:":8080"`
	// HTTP address of the dashboard API
	HTTP string `yaml:"http" default:":5000"`
}

// Config main configuration
type Config struct {
	Ports      Ports      `yaml:"ports"`
	Rules      Rules      `yaml:"rules"`
	BlockPage  BlockPage  `yaml:"blockPage"`
	QueryLog   QueryLog   `yaml:"queryLog"`
	Proxy      Proxy      `yaml:"proxy"`
	Prometheus Metrics    `yaml:"prometheus"`
	Log        log.Config `yaml:"log"`
}

// NewDefaultConfig returns a configuration with all default values
func NewDefaultConfig() (*Config, error) {
	cfg := new(Config)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("can't apply default values: %w", err)
	}

	return cfg, nil
}

// LoadConfig creates new config from YAML file. If the file doesn't exist and
// is not mandatory, the default configuration is returned.
func LoadConfig(path string, mandatory bool) (*Config, error) {
	cfg, err := NewDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mandatory {
			return cfg, nil
		}

		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	if err := unmarshalConfig(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("wrong file structure: %w", err)
	}

	return cfg.validate()
}

func (cfg *Config) validate() error {
	var err *multierror.Error

	err = multierror.Append(err,
		cfg.Rules.validate(),
		cfg.QueryLog.validate(),
		cfg.Proxy.validate(),
	)

	if cfg.Ports.Proxy == "" {
		err = multierror.Append(err, errors.New("ports.proxy must not be empty"))
	}

	if cfg.Ports.HTTP == "" {
		err = multierror.Append(err, errors.New("ports.http must not be empty"))
	}

	if err.ErrorOrNil() != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// LogConfig logs all configuration sections
func (cfg *Config) LogConfig(logger *logrus.Entry) {
	logger.Infof("ports: proxy = %s, http = %s", cfg.Ports.Proxy, cfg.Ports.HTTP)

	sections := []struct {
		name string
		c    Configurable
	}{
		{"rules", &cfg.Rules},
		{"blockPage", &cfg.BlockPage},
		{"queryLog", &cfg.QueryLog},
		{"proxy", &cfg.Proxy},
		{"prometheus", &cfg.Prometheus},
	}

	for _, s := range sections {
		if !s.c.IsEnabled() {
			logger.Infof("%s: disabled", s.name)

			continue
		}

		logger.Infof("%s:", s.name)
		s.c.LogConfig(logger.WithField("section", s.name))
	}
}
