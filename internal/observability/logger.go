package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON logger for a binary. LOG_LEVEL picks the level and every
// entry carries the component name, so the three binaries can share one sink.
func NewLogger(component string) (*zap.Logger, error) {
	var opts []zap.Option
	if component != "" {
		opts = append(opts, zap.Fields(zap.String("component", component)))
	}
	return loggerConfig(os.Getenv("LOG_LEVEL")).Build(opts...)
}

func loggerConfig(level string) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLogLevel(level))
	return cfg
}

func parseLogLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN", "WARNING":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
