package logger

import (
	"os"
	"synclinic-service/internal/app/config"

	"github.com/sirupsen/logrus"
)

// InitProcessLogger configures the process-level logrus logger used by the
// cmd binaries for startup and shutdown messages.
func InitProcessLogger(internalConfig *config.InternalConfig) {
	switch internalConfig.App.Env {
	case "production":
		logrus.SetFormatter(&logrus.JSONFormatter{})
		file, err := os.OpenFile("process.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Info("Failed to log to file, using default stderr")
		}
	default:
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
}
