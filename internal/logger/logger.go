// Package logger builds the zap logger shared by the server, the CLI
// commands and the MCP server.
package logger

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names used across packages.
const (
	FieldPage      = "page"
	FieldSession   = "session"
	FieldUnit      = "unit"
	FieldRegion    = "region"
	FieldSeq       = "seq"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldOperation = "operation"
)

// New returns a sugared logger writing to stderr. Stdout is left alone so
// the MCP server can speak its protocol there. jsonOutput selects the
// production JSON encoder; otherwise a compact console encoder is used.
func New(jsonOutput bool, level string) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return nil, errors.Wrap(err, "building json logger")
		}
		return l.Sugar(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		lvl,
	)
	return zap.New(core).Sugar(), nil
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, errors.Newf("unknown log level %q", s)
	}
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
