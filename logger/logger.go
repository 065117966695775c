package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. An empty path or a file
// that cannot be opened logs to stdout.
func InitLogger(level, path string) {
	var out io.Writer = os.Stdout
	if path != "" {
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file (%s), using stdout: %v", path, err)
		} else {
			out = logFile
		}
	}

	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	logrus.WithField("level", lvl.String()).Info("Logger initialized")
}
