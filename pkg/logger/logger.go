package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	serviceName    = "donate"
	serviceVersion = "1.0.0"
)

type Config struct {
	Level      string `yaml:"level"`
	TimeFormat string `yaml:"time_format"`
	Pretty     bool   `yaml:"pretty"`
}

func New() zerolog.Logger {
	return NewWithConfig(Config{
		Level:      "info",
		TimeFormat: time.RFC3339,
		Pretty:     false,
	})
}

// NewWithConfig builds the service logger. Extra writers (for example a
// Sink) receive the JSON encoded lines alongside stdout.
func NewWithConfig(config Config, extra ...io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var out io.Writer = os.Stdout
	if config.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				s, _ := i.(string)
				return colorizeLevel(s)
			},
		}
	}

	if len(extra) > 0 {
		writers := append([]io.Writer{out}, extra...)
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Str("version", serviceVersion).
		Logger()
}

func colorizeLevel(level string) string {
	switch level {
	case "trace":
		return "\033[35m" + level + "\033[0m" // Magenta
	case "debug":
		return "\033[36m" + level + "\033[0m" // Cyan
	case "info":
		return "\033[32m" + level + "\033[0m" // Green
	case "warn":
		return "\033[33m" + level + "\033[0m" // Yellow
	case "error":
		return "\033[31m" + level + "\033[0m" // Red
	case "fatal", "panic":
		return "\033[91m" + level + "\033[0m" // Bright Red
	default:
		return level
	}
}
