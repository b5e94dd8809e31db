// Package logging provides the structured log entry shared by every
// subsystem of the client: a typed record carrying a message, a level,
// an optional error and redacted additional fields, emitted via logrus.
package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is a single structured log record. Subsystems build one via
// NewEntry/WithField and call Print to emit it through logrus.
type Entry struct {
	Message        string                 `json:"message,omitempty"`
	Error          error                  `json:"error,omitempty"`
	Type           string                 `json:"type,omitempty"`
	Level          logrus.Level           `json:"level,omitempty"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
	Timestamp      time.Time              `json:"timestamp,omitempty"`
}

// redactedFields never appear unredacted in AdditionalData or String output.
var redactedFields = map[string]struct{}{
	"password": {},
	"passwd":   {},
}

// NewEntry builds a log entry of the given type and level, formatting
// message from format/args the way fmt.Sprintf does.
func NewEntry(logType string, level logrus.Level, format string, args ...interface{}) *Entry {
	return &Entry{
		Message:   fmt.Sprintf(format, args...),
		Type:      strings.ToUpper(logType),
		Level:     level,
		Timestamp: time.Now(),
	}
}

// WithField attaches a field to the entry, redacting known-sensitive keys.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	if e.AdditionalData == nil {
		e.AdditionalData = make(map[string]interface{})
	}
	if _, sensitive := redactedFields[strings.ToLower(key)]; sensitive {
		value = "***"
	}
	e.AdditionalData[key] = value
	return e
}

// WithError attaches the error both as the dedicated Error field and as an
// AdditionalData entry so it round-trips through JSON.
func (e *Entry) WithError(err error) *Entry {
	e.Error = err
	if err != nil {
		e.WithField("error", err.Error())
	}
	return e
}

// Print emits the entry to logrus at the level it carries.
func (e *Entry) Print() {
	logEntry := logrus.WithFields(logrus.Fields{
		"type": e.Type,
		"time": e.Timestamp.Format(time.RFC3339),
	})
	for key, value := range e.AdditionalData {
		logEntry = logEntry.WithField(key, value)
	}
	if e.Error != nil {
		logEntry = logEntry.WithField("error", e.Error.Error())
	}

	switch e.Level {
	case logrus.ErrorLevel:
		logEntry.Error(e.Message)
	case logrus.WarnLevel:
		logEntry.Warn(e.Message)
	case logrus.DebugLevel:
		logEntry.Debug(e.Message)
	default:
		logEntry.Info(e.Message)
	}
}

// String serializes the entry to JSON, e.g. for shipping to a log sink.
func (e *Entry) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("error serializing log entry: %v", err)
	}
	return string(data)
}

// Infof, Warnf, Errorf and Debugf are shorthands that build and print a
// fire-and-forget entry of the given type in one call.
func Infof(logType, format string, args ...interface{}) {
	NewEntry(logType, logrus.InfoLevel, format, args...).Print()
}

func Warnf(logType, format string, args ...interface{}) {
	NewEntry(logType, logrus.WarnLevel, format, args...).Print()
}

func Errorf(logType string, err error, format string, args ...interface{}) {
	NewEntry(logType, logrus.ErrorLevel, format, args...).WithError(err).Print()
}

func Debugf(logType, format string, args ...interface{}) {
	NewEntry(logType, logrus.DebugLevel, format, args...).Print()
}
