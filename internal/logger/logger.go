package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldComponent  = "component"
	FieldTaxonomy   = "taxonomy"
	FieldInstanceID = "instance_id"
	FieldTerm       = "term"
	FieldCount      = "count"
	FieldError      = "error"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldAddress    = "address"
	FieldTool       = "tool"
)

// New builds the process logger. JSON output uses zap's production config;
// otherwise a console encoder writes to stderr so stdout stays free for
// CLI output and the MCP stdio transport.
func New(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		return cfg.Build()
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	)
	return zap.New(core), nil
}

// Component returns a child logger tagged with a component name.
// A nil logger yields a no-op logger.
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.With(zap.String(FieldComponent, name))
}
