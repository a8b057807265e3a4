package logging

import (
	"os"

	"github.com/lostfound/found-api/internal/config"

	"github.com/sirupsen/logrus"
)

// New creates a new structured logger
func New(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set output format
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z",
		})
	}

	logger.SetOutput(os.Stdout)

	// Add default fields
	logger.AddHook(&defaultFieldsHook{fields: logrus.Fields{
		"service":     ServiceName,
		"version":     Version(),
		"environment": cfg.Server.Environment,
	}})

	return logger
}

// defaultFieldsHook stamps static fields onto every entry that does not
// already carry them.
type defaultFieldsHook struct {
	fields logrus.Fields
}

func (h *defaultFieldsHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}

// ServiceName is reported in every log line and span.
const ServiceName = "found-api"

// Version returns the application version
func Version() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// WithUserID adds user ID to logger context
func WithUserID(logger *logrus.Logger, userID string) *logrus.Entry {
	return logger.WithField("user_id", userID)
}

// WithItem adds item and owner context to logger
func WithItem(logger *logrus.Logger, itemID, ownerID string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"owner_id": ownerID,
	})
}
