package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// WatermillAdapter routes watermill's logs through logrus.
type WatermillAdapter struct {
	entry *logrus.Entry
}

var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)

// NewWatermillAdapter wraps logger. A nil logger means the standard one.
func NewWatermillAdapter(logger *logrus.Logger) *WatermillAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WatermillAdapter{entry: logrus.NewEntry(logger).WithField("component", "watermill")}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

// Debug is demoted to trace; watermill is chatty at debug.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{entry: a.entry.WithFields(logrus.Fields(fields))}
}
