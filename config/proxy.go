package config

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Proxy configuration for the intercepting proxy
type Proxy struct {
	UpstreamTimeout Duration `yaml:"upstreamTimeout" default:"30s"`
}

// IsEnabled implements `config.Configurable`.
func (c *Proxy) IsEnabled() bool {
	return true
}

// LogConfig implements `config.Configurable`.
func (c *Proxy) LogConfig(logger *logrus.Entry) {
	logger.Infof("upstreamTimeout = %s", c.UpstreamTimeout)
}

func (c *Proxy) validate() error {
	if !c.UpstreamTimeout.IsAboveZero() {
		return errors.New("proxy.upstreamTimeout must be greater than zero")
	}

	return nil
}
