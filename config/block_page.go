package config

import (
	"github.com/sirupsen/logrus"
)

// BlockPage configuration for the denial response
type BlockPage struct {
	Template string `yaml:"template" default:"templates/blocked_page.html"`
}

// IsEnabled implements `config.Configurable`.
func (c *BlockPage) IsEnabled() bool {
	return c.Template != ""
}

// LogConfig implements `config.Configurable`.
func (c *BlockPage) LogConfig(logger *logrus.Entry) {
	if c.IsEnabled() {
		logger.Infof("template = %s", c.Template)
	} else {
		logger.Info("template = built-in fallback")
	}
}
