package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// FormatType format for logging
type FormatType int

const (
	// FormatTypeText logging as text
	FormatTypeText FormatType = iota
	// FormatTypeJSON JSON format
	FormatTypeJSON
)

//nolint:gochecknoglobals
var formatTypeNames = []string{"text", "json"}

// Level log level
type Level int

const (
	LevelInfo Level = iota
	LevelTrace
	LevelDebug
	LevelWarn
	LevelError
	LevelFatal
)

//nolint:gochecknoglobals
var levelNames = []string{"info", "trace", "debug", "warn", "error", "fatal"}

// Config logging configuration
type Config struct {
	Level     Level      `yaml:"level" default:"info"`
	Format    FormatType `yaml:"format" default:"text"`
	Timestamp bool       `yaml:"timestamp" default:"true"`
	Hostname  bool       `yaml:"hostname" default:"false"`
}

// Logger is the global logging instance
// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger(Config{
		Level:     LevelInfo,
		Format:    FormatTypeText,
		Timestamp: true,
	})
}

// Log returns the global logger
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog return the global logger with prefix
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// EscapeInput removes line breaks from input
func EscapeInput(input string) string {
	result := strings.ReplaceAll(input, "\n", "")
	result = strings.ReplaceAll(result, "\r", "")

	return result
}

// ConfigureLogger applies configuration to the global logger
func ConfigureLogger(lc Config) {
	if level, err := logrus.ParseLevel(lc.Level.String()); err != nil {
		logger.Fatalf("invalid log level %s %v", lc.Level, err)
	} else {
		logger.SetLevel(level)
	}

	var baseFormatter logrus.Formatter

	switch lc.Format {
	case FormatTypeText:
		logFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			ForceColors:      false,
			QuoteEmptyFields: true,
			DisableTimestamp: !lc.Timestamp,
		}

		logFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		baseFormatter = logFormatter

	case FormatTypeJSON:
		baseFormatter = &logrus.JSONFormatter{}
	}

	var newFormatter logrus.Formatter

	if hn, err := getHostname("/etc/hostname"); err == nil && lc.Hostname {
		newFormatter = hostnameFormatter{
			hostname:  hn,
			formatter: baseFormatter,
		}
	} else {
		newFormatter = baseFormatter
	}

	logger.SetFormatter(newFormatter)
}

// Silence disables the logger output
func Silence() {
	logger.Out = io.Discard
}

type hostnameFormatter struct {
	hostname  string
	formatter logrus.Formatter
}

func (l hostnameFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	newentry := *entry
	newentry.Data = make(logrus.Fields, len(entry.Data)+1)

	for k, v := range entry.Data {
		newentry.Data[k] = v
	}

	newentry.Data["hostname"] = l.hostname

	return l.formatter.Format(&newentry)
}

func getHostname(location string) (string, error) {
	if len(location) > 0 {
		if hn, err := os.ReadFile(location); err == nil {
			return strings.ToLower(strings.TrimSpace(string(hn))), nil
		}
	}

	if hn, err := os.Hostname(); err == nil {
		return hn, nil
	}

	return "", errors.New("hostname couldn't be determined")
}

// String implements `fmt.Stringer`
func (x Level) String() string {
	if int(x) >= 0 && int(x) < len(levelNames) {
		return levelNames[x]
	}

	return fmt.Sprintf("Level(%d)", x)
}

// ParseLevel converts a name into a Level
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(n, name) {
			return Level(i), nil
		}
	}

	return Level(0), fmt.Errorf("%s is not a valid Level, try [%s]", name, strings.Join(levelNames, ", "))
}

// MarshalText implements `encoding.TextMarshaler`
func (x Level) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements `encoding.TextUnmarshaler`
func (x *Level) UnmarshalText(text []byte) error {
	val, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*x = val

	return nil
}

// UnmarshalYAML implements `yaml.Unmarshaler`
func (x *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	return x.UnmarshalText([]byte(s))
}

// String implements `fmt.Stringer`
func (x FormatType) String() string {
	if int(x) >= 0 && int(x) < len(formatTypeNames) {
		return formatTypeNames[x]
	}

	return fmt.Sprintf("FormatType(%d)", x)
}

// ParseFormatType converts a name into a FormatType
func ParseFormatType(name string) (FormatType, error) {
	for i, n := range formatTypeNames {
		if strings.EqualFold(n, name) {
			return FormatType(i), nil
		}
	}

	return FormatType(0), fmt.Errorf("%s is not a valid FormatType, try [%s]", name, strings.Join(formatTypeNames, ", "))
}

// MarshalText implements `encoding.TextMarshaler`
func (x FormatType) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements `encoding.TextUnmarshaler`
func (x *FormatType) UnmarshalText(text []byte) error {
	val, err := ParseFormatType(string(text))
	if err != nil {
		return err
	}

	*x = val

	return nil
}

// UnmarshalYAML implements `yaml.Unmarshaler`
func (x *FormatType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	return x.UnmarshalText([]byte(s))
}
