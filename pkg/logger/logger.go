package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before InitLogger runs.
var Log = logrus.New()

// InitLogger configures Log from the level and format settings.
func InitLogger(level, format string) {
	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	if strings.EqualFold(format, "text") {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// keep package-level logrus calls consistent with Log
	logrus.SetOutput(Log.Out)
	logrus.SetFormatter(Log.Formatter)
	logrus.SetLevel(lvl)
}
