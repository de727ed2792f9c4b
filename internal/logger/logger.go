// Package logger builds the process-wide logrus logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout.  Development gets human-readable
// text at debug level; every other environment gets JSON at info level.
func New(appName, env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if env == "development" || env == "dev" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	l.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return l
}
