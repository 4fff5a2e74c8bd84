package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// QueryLogType type of the query log storage
type QueryLogType int

const (
	// QueryLogTypeSqlite use a sqlite database file
	QueryLogTypeSqlite QueryLogType = iota
	// QueryLogTypeMysql use a MySQL or MariaDB database
	QueryLogTypeMysql
	// QueryLogTypePostgresql use a PostgreSQL database
	QueryLogTypePostgresql
	// QueryLogTypeNone disables the query log
	QueryLogTypeNone
)

//nolint:gochecknoglobals
var queryLogTypeNames = []string{"sqlite", "mysql", "postgresql", "none"}

// String implements `fmt.Stringer`
func (x QueryLogType) String() string {
	if int(x) >= 0 && int(x) < len(queryLogTypeNames) {
		return queryLogTypeNames[x]
	}

	return fmt.Sprintf("QueryLogType(%d)", x)
}

// ParseQueryLogType converts a name into a QueryLogType
func ParseQueryLogType(name string) (QueryLogType, error) {
	for i, n := range queryLogTypeNames {
		if strings.EqualFold(n, name) {
			return QueryLogType(i), nil
		}
	}

	return QueryLogType(0), fmt.Errorf("%s is not a valid QueryLogType, try [%s]",
		name, strings.Join(queryLogTypeNames, ", "))
}

// UnmarshalText implements `encoding.TextUnmarshaler`
func (x *QueryLogType) UnmarshalText(text []byte) error {
	val, err := ParseQueryLogType(string(text))
	if err != nil {
		return err
	}

	*x = val

	return nil
}

// UnmarshalYAML implements `yaml.Unmarshaler`
func (x *QueryLogType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	return x.UnmarshalText([]byte(s))
}

// QueryLog configuration for the query logging
type QueryLog struct {
	Type             QueryLogType `yaml:"type" default:"sqlite"`
	Target           string       `yaml:"target" default:"argus.db"`
	LogRetentionDays uint64       `yaml:"logRetentionDays"`
	CreationAttempts uint         `yaml:"creationAttempts" default:"3"`
	CreationCooldown Duration     `yaml:"creationCooldown" default:"2s"`
}

// IsEnabled implements `config.Configurable`.
func (c *QueryLog) IsEnabled() bool {
	return c.Type != QueryLogTypeNone
}

// LogConfig implements `config.Configurable`.
func (c *QueryLog) LogConfig(logger *logrus.Entry) {
	logger.Infof("type: %s", c.Type)

	if !c.IsEnabled() {
		return
	}

	logger.Infof("target: %s", c.censoredTarget())
	logger.Infof("logRetentionDays: %d", c.LogRetentionDays)
	logger.Debugf("creationAttempts: %d", c.CreationAttempts)
	logger.Debugf("creationCooldown: %s", c.CreationCooldown)
}

// mysql DSN: user:password@tcp(host)/db
var dsnPasswordRegex = regexp.MustCompile(`^([^:/@]+):([^@]*)@`)

func (c *QueryLog) censoredTarget() string {
	if u, err := url.Parse(c.Target); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), secretObfuscator)

			return u.String()
		}

		return c.Target
	}

	return dsnPasswordRegex.ReplaceAllString(c.Target, "${1}:"+secretObfuscator+"@")
}

func (c *QueryLog) validate() error {
	if c.IsEnabled() && strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("queryLog.target must not be empty for type %s", c.Type)
	}

	if c.CreationAttempts == 0 {
		return fmt.Errorf("queryLog.creationAttempts must be at least 1")
	}

	return nil
}
