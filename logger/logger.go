package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Entry
	once          sync.Once
)

// GetProjectLogger returns the logger shared by every pulse package.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		l := logrus.New()
		l.Out = os.Stderr
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		l.Level = logrus.InfoLevel
		projectLogger = l.WithField("app", "pulse")
	})
	return projectLogger
}

// SetLevel parses a logrus level name and applies it to the project logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	GetProjectLogger().Logger.SetLevel(lvl)
	return nil
}

// SetOutputFile redirects the project logger to the given file. The terminal
// UI owns stdout/stderr while it runs, so logs go to a file instead.
func SetOutputFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	GetProjectLogger().Logger.SetOutput(f)
	return f, nil
}
