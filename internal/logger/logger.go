package logger

import (
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
// В development используется текстовый формат, иначе JSON.
func Init(env string) {
	Log = logrus.New()

	level := logrus.InfoLevel
	if env == "development" {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)

	if env == "development" {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// WithComponent возвращает запись с полем component.
// Безопасно вызывать до Init: тогда используется стандартный логгер logrus.
func WithComponent(component string) *logrus.Entry {
	if Log == nil {
		return logrus.WithField("component", component)
	}
	return Log.WithField("component", component)
}
