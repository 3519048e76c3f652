package logging

import (
	"fmt"
	"os"

	"ctxpack/pkg/version"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Logger is the global logger instance
var Logger *zap.Logger

// Setup builds the process logger. debug selects the development config at debug
// level; otherwise level (such as "info" or "warn") applies to a production
// config. Output is human-readable when stderr is a terminal and JSON otherwise.
func Setup(debug bool, level string) (*zap.Logger, error) {
	cfg := newConfig(debug, term.IsTerminal(int(os.Stderr.Fd())))
	if !debug && level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return zap.NewNop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	v := version.Get()
	cfg.InitialFields = map[string]interface{}{
		"appName":    "ctxpack",
		"appVersion": v.Version,
	}

	logger, err := cfg.Build()
	if err != nil {
		Logger = zap.NewExample()
		return Logger, err
	}
	Logger = logger
	zap.ReplaceGlobals(Logger)
	return Logger, nil
}

func newConfig(debug, tty bool) zap.Config {
	if debug {
		return zap.NewDevelopmentConfig()
	}
	cfg := zap.NewProductionConfig()
	if tty {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg
}
