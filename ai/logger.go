// logger.go logs every AI interaction.
//
// WithLogging wraps any Provider; requests and responses go to the
// "ai" child of the application logger, full content at debug level.
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type loggingProvider struct {
	next Provider
	log  *zap.Logger
}

// WithLogging decorates p so each Chat call is logged.
func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		return p
	}
	return &loggingProvider{next: p, log: log}
}

func (l *loggingProvider) Name() string {
	return l.next.Name()
}

func (l *loggingProvider) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	l.log.Info("request",
		zap.String("provider", l.next.Name()),
		zap.String("model", model),
		zap.Int("messages", len(messages)))
	if ce := l.log.Check(zap.DebugLevel, "request messages"); ce != nil {
		roles := make([]string, len(messages))
		sizes := make([]int, len(messages))
		for i, m := range messages {
			roles[i] = m.Role
			sizes[i] = len(m.Content)
		}
		ce.Write(zap.Strings("roles", roles), zap.Ints("sizes", sizes))
	}

	start := time.Now()
	resp, err := l.next.Chat(ctx, messages, model)
	elapsed := time.Since(start)

	if err != nil {
		l.log.Error("response", zap.Duration("elapsed", elapsed), zap.Error(err))
		return resp, err
	}
	l.log.Info("response", zap.Duration("elapsed", elapsed), zap.Int("length", len(resp)))
	l.log.Debug("response text", zap.String("text", resp))
	return resp, nil
}
