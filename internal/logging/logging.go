// Package logging wires up the structured logger (github.com/sirupsen/
// logrus) every other package logs through.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing JSON to stdout at the given level
// name. An unrecognized level falls back to info rather than erroring, so a
// typo in LOG_LEVEL degrades gracefully instead of blocking startup.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
