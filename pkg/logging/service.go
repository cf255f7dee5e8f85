package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/config"
)

// NewLogger builds the process logger from the logging config section.
// Unknown levels fall back to info rather than failing startup.
func NewLogger(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var targets []io.Writer
	if cfg.LogToStdout {
		targets = append(targets, os.Stdout)
	}
	if cfg.Logfile != "" {
		file, err := os.OpenFile(cfg.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		targets = append(targets, file)
	}

	switch len(targets) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(targets[0])
	default:
		logger.SetOutput(io.MultiWriter(targets...))
	}

	return logger, nil
}
