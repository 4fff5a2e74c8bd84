package config

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// minPollInterval keeps the poller from spinning on stat calls
const minPollInterval = 100 * time.Millisecond

// Rules configuration for the domain rule file
type Rules struct {
	File         string   `yaml:"file" default:"config/blocked_domains.txt"`
	PollInterval Duration `yaml:"pollInterval" default:"2s"`
}

// IsEnabled implements `config.Configurable`.
func (c *Rules) IsEnabled() bool {
	return c.PollInterval.IsAboveZero()
}

// LogConfig implements `config.Configurable`.
func (c *Rules) LogConfig(logger *logrus.Entry) {
	logger.Infof("file = %s", c.File)

	if c.IsEnabled() {
		logger.Infof("pollInterval = %s", c.PollInterval)
	} else {
		logger.Info("pollInterval = disabled")
	}
}

func (c *Rules) validate() error {
	if strings.TrimSpace(c.File) == "" {
		return errors.New("rules.file must not be empty")
	}

	if c.IsEnabled() && c.PollInterval.ToDuration() < minPollInterval {
		return errors.New("rules.pollInterval must be at least 100ms")
	}

	return nil
}
