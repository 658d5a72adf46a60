package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level string `toml:"level"`
	// Format is "text" (default) or "json".
	Format string `toml:"format"`
}

func New(cfg Config) (*logrus.Logger, error) {
	l := logrus.New()
	switch cfg.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.DateTime,
			FullTimestamp:   true,
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
	}
	l.SetLevel(level)
	return l, nil
}
