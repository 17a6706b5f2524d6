package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel represents the logging verbosity requested by configuration or flags.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = logLevelDebugStringConstant
	LogLevelInfo  LogLevel = logLevelInfoStringConstant
	LogLevelWarn  LogLevel = logLevelWarnStringConstant
	LogLevelError LogLevel = logLevelErrorStringConstant
)

// LogFormat selects the output encoding of created loggers.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = logFormatStructuredStringConstant
	LogFormatConsole    LogFormat = logFormatConsoleStringConstant
)

// LoggerFactoryOptions configures the fallbacks applied when a requested
// level or format is empty.
type LoggerFactoryOptions struct {
	DefaultLevel  LogLevel
	DefaultFormat LogFormat
}

// LoggerFactory builds zap loggers from validated level and format selections.
type LoggerFactory struct {
	options LoggerFactoryOptions
}

// NewLoggerFactory constructs a factory that falls back to info-level
// structured logging.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithOptions(LoggerFactoryOptions{})
}

// NewLoggerFactoryWithOptions constructs a factory with explicit fallbacks.
func NewLoggerFactoryWithOptions(options LoggerFactoryOptions) *LoggerFactory {
	if options.DefaultLevel == "" {
		options.DefaultLevel = LogLevelInfo
	}
	if options.DefaultFormat == "" {
		options.DefaultFormat = LogFormatStructured
	}
	return &LoggerFactory{options: options}
}

// CreateLogger builds a zap logger honoring the requested level and format.
// Empty selections resolve to the factory defaults; casing and surrounding
// whitespace are ignored.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	normalizedLogLevel := normalizeLogLevel(requestedLogLevel, factory.options.DefaultLevel)
	normalizedLogFormat := normalizeLogFormat(requestedLogFormat, factory.options.DefaultFormat)

	zapLogLevel, levelResolutionError := resolveZapLevel(normalizedLogLevel)
	if levelResolutionError != nil {
		return nil, levelResolutionError
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLogLevel)

	switch normalizedLogFormat {
	case LogFormatStructured:
		loggerConfiguration.Encoding = jsonZapEncodingStringConstant
	case LogFormatConsole:
		loggerConfiguration.Encoding = consoleZapEncodingStringConstant
		loggerConfiguration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		loggerConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, normalizedLogFormat)
	}

	return loggerConfiguration.Build()
}

func normalizeLogLevel(requestedLogLevel LogLevel, fallbackLogLevel LogLevel) LogLevel {
	trimmedLogLevel := LogLevel(strings.ToLower(strings.TrimSpace(string(requestedLogLevel))))
	if trimmedLogLevel == "" {
		return fallbackLogLevel
	}
	return trimmedLogLevel
}

func normalizeLogFormat(requestedLogFormat LogFormat, fallbackLogFormat LogFormat) LogFormat {
	trimmedLogFormat := LogFormat(strings.ToLower(strings.TrimSpace(string(requestedLogFormat))))
	if trimmedLogFormat == "" {
		return fallbackLogFormat
	}
	return trimmedLogFormat
}

func resolveZapLevel(normalizedLogLevel LogLevel) (zapcore.Level, error) {
	switch normalizedLogLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, normalizedLogLevel)
	}
}
