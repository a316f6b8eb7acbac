package core

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger intended to be used for general application logs,
// shared by the server and any of its tools.
func NewLogger(cfg *Config) (*logrus.Logger, error) {
	var w io.Writer
	var err error

	if cfg.Logging.LogFilePath == "" {
		w = os.Stdout
	} else {
		w, err = os.OpenFile(cfg.Logging.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.Logging.LogFilePath, err)
		}
	}

	logLvl, err := logrus.ParseLevel(cfg.Logging.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	return &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableSorting:  true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logLvl,
	}, nil
}
