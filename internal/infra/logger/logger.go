package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"daily_quote_mailer/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// New builds the process logger from application configuration.
// Output goes to stdout and, when cfg.LogFile is set, is appended to that file.
// The returned close func releases the file and is safe to call when no file is open.
func New(cfg *config.AppConfig) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	closeFn := func() error { return nil }

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, closeFn, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closeFn = f.Close
	}
	log.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(level)
	}

	if env := strings.ToLower(cfg.Environment); env == "production" || env == "staging" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   cfg.LogFile != "", // keep escape codes out of the file
		})
	}

	log.Debugf("Log level set to: %s", log.GetLevel().String())
	return log, closeFn, nil
}
