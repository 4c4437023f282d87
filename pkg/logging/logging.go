// Package logging wraps the zap logging package to provide easier access and initialization of the logger
package logging

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var LogLevelString = getLogLevel()

// RawLogger is the raw global logger object used for calls wrapped by the logging package
var RawLogger = InitLogger(LogLevelString)

func parseLevel(logLevelString string) zap.AtomicLevel {
	logLevel, err := zap.ParseAtomicLevel(logLevelString)
	if err != nil {
		log.Fatalln("Invalid log level:", logLevelString)
	}
	return logLevel
}

func encoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.StacktraceKey = "" // to hide stacktrace info
	encoderConfig.CallerKey = "caller"
	return encoderConfig
}

// InitLogger initializes a JSON logger with the given log level string
func InitLogger(logLevelString string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.Level = parseLevel(logLevelString)
	config.EncoderConfig = encoderConfig()

	logger, err := config.Build()
	if err != nil {
		log.Fatal(err)
	}

	return logger.Sugar()
}

// InitLoggerWithService initializes a logger with child fields for the service and namespace under diagnosis
func InitLoggerWithService(logLevelString string, serviceName string, namespace string) *zap.SugaredLogger {
	return InitConsoleLogger(logLevelString).With(
		zap.String("service", serviceName),
		zap.String("namespace", namespace),
	)
}

// InitConsoleLogger initializes a logger that outputs in console format using zapcore.NewConsoleEncoder
func InitConsoleLogger(logLevelString string) *zap.SugaredLogger {
	logLevel := parseLevel(logLevelString)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig())

	stdoutSyncer := zapcore.Lock(os.Stdout)
	stderrSyncer := zapcore.Lock(os.Stderr)

	// Core for Info and below to stdout
	stdoutCore := zapcore.NewCore(
		consoleEncoder,
		stdoutSyncer,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl < zapcore.ErrorLevel && lvl >= logLevel.Level()
		}),
	)

	// Core for Error and above to stderr
	stderrCore := zapcore.NewCore(
		consoleEncoder,
		stderrSyncer,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel && lvl >= logLevel.Level()
		}),
	)

	core := zapcore.NewTee(stdoutCore, stderrCore)
	logger := zap.New(core)
	return logger.Sugar()
}

// Error wraps zap's SugaredLogger.Error()
func Error(args ...interface{}) {
	RawLogger.Error(args...)
}

// Infof wraps zap's SugaredLogger.Infof()
func Infof(template string, args ...interface{}) {
	RawLogger.Infof(template, args...)
}

// Debugf wraps zap's SugaredLogger.Debugf()
func Debugf(template string, args ...interface{}) {
	RawLogger.Debugf(template, args...)
}

// Warnf wraps zap's SugaredLogger.Warnf()
func Warnf(template string, args ...interface{}) {
	RawLogger.Warnf(template, args...)
}

// Errorf wraps zap's SugaredLogger.Errorf()
func Errorf(template string, args ...interface{}) {
	RawLogger.Errorf(template, args...)
}

// getLogLevel returns the log level from the environment variable LOG_LEVEL
func getLogLevel() string {
	if envLogLevel, exists := os.LookupEnv("LOG_LEVEL"); exists {
		return envLogLevel
	}
	return "info"
}
