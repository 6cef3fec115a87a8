package common

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

var once sync.Once

var singleton *log.Logger

// Logger returns the process wide logger. Renderer instances derive their own sub-logger from it
// with Logger().With(...). It is also installed as the charmbracelet/log default, so packages that stay free of
// the window backends log through the package level functions.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "vk",
		})
		singleton.SetLevel(log.InfoLevel)
		log.SetDefault(singleton)
	})
	return singleton
}

func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	Logger().SetLevel(lvl)
	return nil
}

func LogDebug(msg string, args ...interface{}) {
	Logger().Helper()
	Logger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	Logger().Helper()
	Logger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	Logger().Helper()
	Logger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	Logger().Helper()
	Logger().Errorf(msg, args...)
}
