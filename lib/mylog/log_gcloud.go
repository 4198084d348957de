package mylog

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MarcGrol/coinshop/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudLogger
	}
}

type structuredLogger struct {
	componentName string
	zapLogger     *zap.Logger
}

func newGcloudLogger(componentName string) Logger {
	return structuredLogger{
		componentName: componentName,
		zapLogger:     newCloudZapLogger(),
	}
}

// newCloudZapLogger emits the field names Cloud Logging parses from stdout.
func newCloudZapLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "severity"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.CallerKey = ""
	cfg.EncoderConfig.StacktraceKey = ""

	logger, err := cfg.Build()
	if err != nil {
		log.Printf("error creating structured logger, falling back to nop: %s", err)
		return zap.NewNop()
	}
	return logger
}

func (l structuredLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	fields := []zap.Field{
		zap.String("component", l.componentName),
		zap.Any("logging.googleapis.com/labels", map[string]string{"aggregate": traceLabel}),
	}
	if trace := mycontext.TraceFromContext(ctx); trace != "" {
		fields = append(fields, zap.String("logging.googleapis.com/trace", trace))
	}

	msg := l.componentName + ":" + fmt.Sprintf(format, a...)
	switch severity {
	case SeverityDebug:
		l.zapLogger.Debug(msg, fields...)
	case SeverityWarn:
		l.zapLogger.Warn(msg, fields...)
	case SeverityError:
		l.zapLogger.Error(msg, fields...)
	default:
		l.zapLogger.Info(msg, fields...)
	}
}
