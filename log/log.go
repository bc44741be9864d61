package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger = zap.NewNop().Sugar()

// Init replaces the package logger. Verbose enables debug-level output.
func Init(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = l.Sugar()
	return nil
}

func Sync() {
	_ = logger.Sync()
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// ErrorPrinter is the user-facing error channel of the app layer, kept
// separate from diagnostic logging so errors always reach the console.
type ErrorPrinter interface {
	Ln(args ...interface{})
	F(format string, args ...interface{})
}

type WriterErrorPrinter struct {
	Writer io.Writer
}

func (p *WriterErrorPrinter) Ln(args ...interface{}) {
	fmt.Fprintln(p.Writer, args...)
}

func (p *WriterErrorPrinter) F(format string, args ...interface{}) {
	fmt.Fprintf(p.Writer, format, args...)
}

func NewStderrErrorPrinter() *WriterErrorPrinter {
	return &WriterErrorPrinter{Writer: os.Stderr}
}
