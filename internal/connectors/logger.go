package connectors

import (
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// restyLogger adapts a zap.Logger to the resty.Logger interface.
type restyLogger struct {
	sugar *zap.SugaredLogger
}

// NewRestyLogger forwards resty's internal logging to zap.
func NewRestyLogger(logger *zap.Logger) resty.Logger {
	return &restyLogger{sugar: logger.Sugar()}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }

func (l *restyLogger) Warnf(format string, v ...interface{}) { l.sugar.Warnf(format, v...) }

func (l *restyLogger) Debugf(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
