// Package logger настраивает общий logrus-логгер процесса.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	root   = logrus.New()
	rootMu sync.Mutex
)

func init() {
	configure(root, "info", "text", os.Stdout)
}

// Setup задает уровень (debug, info, warn, error) и формат (text, json)
func Setup(level, format string) {
	rootMu.Lock()
	defer rootMu.Unlock()
	configure(root, level, format, os.Stdout)
}

// SetOutput перенаправляет вывод, например в тестах
func SetOutput(w io.Writer) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root.SetOutput(w)
}

// L возвращает корневой логгер
func L() *logrus.Logger {
	return root
}

// For возвращает логгер компонента с полем component
func For(component string) *logrus.Entry {
	return root.WithField("component", component)
}

func configure(l *logrus.Logger, level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}
	l.SetOutput(out)
}
