package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LogNotifier stands in for Telegram when no bot token is configured.
type LogNotifier struct {
	l *zap.Logger
}

func NewLogNotifier(l *zap.Logger) *LogNotifier {
	return &LogNotifier{l: l.Named("notify")}
}

func (n *LogNotifier) SendService(_ context.Context, format string, args ...any) {
	n.l.Info(fmt.Sprintf(format, args...))
}
