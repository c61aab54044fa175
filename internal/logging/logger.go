// Package logging owns the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logrus instance. It is usable before Init with logrus defaults.
var Logger = logrus.New()

var once sync.Once

// Options controls logger initialization.
type Options struct {
	Level   string
	File    string
	JSON    bool
	Service string
}

// Init configures Logger once. Subsequent calls are no-ops.
func Init(opts Options) {
	once.Do(func() {
		configure(Logger, opts)
		Logger.WithField("output", outputName(opts.File)).Info("logger initialized")
	})
}

func configure(l *logrus.Logger, opts Options) {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	l.SetOutput(out)

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.Service != "" {
		l.AddHook(serviceHook{name: opts.Service})
	}
}

func outputName(file string) string {
	if file == "" {
		return "stdout"
	}
	return file
}

// serviceHook stamps every entry with the service name.
type serviceHook struct {
	name string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.name
	}
	return nil
}
