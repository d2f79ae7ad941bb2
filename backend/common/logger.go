package common

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger builds the process logger for the given level and installs it as
// the zap global logger, which SysLog and friends write to.
func SetupLogger(level string, development bool) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	if development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func SysLog(s string, fields ...zap.Field) {
	zap.L().Info(s, fields...)
}

func SysError(s string, fields ...zap.Field) {
	zap.L().Error(s, fields...)
}

func FatalLog(v ...any) {
	zap.L().Fatal(fmt.Sprint(v...))
}
