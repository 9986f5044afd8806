package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

func init() {
	// Results go to stdout
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:        time.RFC3339Nano,
		DisableColors:          true,
		DisableLevelTruncation: true,
		ForceQuote:             true,
		FullTimestamp:          true,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func reloadLogConfig(level string) (err error) {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	if logrus.GetLevel() != logLevel {
		logrus.SetLevel(logLevel)
		logrus.Debugf("log level changed to: %s", level)
	}
	return
}
