package config

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// NewLogger builds a logger from the logging section. Unknown levels fall back to info.
func NewLogger(cfg domain.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
