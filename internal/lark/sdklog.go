package lark

import (
	"context"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/rs/zerolog"
)

// sdkLogger routes the SDK's own log lines into zerolog
type sdkLogger struct {
	logger zerolog.Logger
}

func (l sdkLogger) Debug(_ context.Context, args ...interface{}) {
	l.logger.Debug().Str("source", "sdk").Msg(fmt.Sprint(args...))
}

func (l sdkLogger) Info(_ context.Context, args ...interface{}) {
	l.logger.Info().Str("source", "sdk").Msg(fmt.Sprint(args...))
}

func (l sdkLogger) Warn(_ context.Context, args ...interface{}) {
	l.logger.Warn().Str("source", "sdk").Msg(fmt.Sprint(args...))
}

func (l sdkLogger) Error(_ context.Context, args ...interface{}) {
	l.logger.Error().Str("source", "sdk").Msg(fmt.Sprint(args...))
}

var _ larkcore.Logger = sdkLogger{}

func sdkLogLevel(level zerolog.Level) larkcore.LogLevel {
	switch {
	case level <= zerolog.DebugLevel:
		return larkcore.LogLevelDebug
	case level == zerolog.InfoLevel:
		return larkcore.LogLevelInfo
	case level == zerolog.WarnLevel:
		return larkcore.LogLevelWarn
	}
	return larkcore.LogLevelError
}
