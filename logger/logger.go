// Package logger builds the logrus logger shared by services and jobs.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

func New(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to info", level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
