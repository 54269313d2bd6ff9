package logging

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var once sync.Once

var singleton *log.Logger

func getLogger() *log.Logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: false,
			Prefix:          "lowpoly",
		})
		if os.Getenv("LOWPOLY_DEBUG") != "" {
			l.SetLevel(log.DebugLevel)
		}
		singleton = l
	})
	return singleton
}

func Debugf(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}
