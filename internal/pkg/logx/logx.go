/*
Package logx wraps zerolog and owns the process-global logger.

It configures the output format for the current environment (human-readable
console output in development, JSON in production) and exposes small helpers
for the common logging levels so that call sites stay one-liners.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global zerolog instance.
// Development mode lowers the level to Debug and switches to the colored
// console writer; production logs JSON at Info level. Caller information
// and a Unix timestamp are attached to every record.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// fieldsOrNil drops the field list when it is not made of key/value pairs,
// so a bad call site cannot panic zerolog.
func fieldsOrNil(fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Msg("logx called with an odd number of fields; fields ignored")
		return nil
	}
	return fields
}

// Info logs at Info level with optional key/value fields.
func Info(msg string, fields ...any) {
	Logger().Info().
		Fields(fieldsOrNil(fields)).
		CallerSkipFrame(1).
		Msg(msg)
}

// Warn logs at Warn level with optional key/value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().
		Fields(fieldsOrNil(fields)).
		CallerSkipFrame(1).
		Msg(msg)
}

// Error logs err at Error level with optional key/value fields.
func Error(err error, msg string, fields ...any) {
	Logger().Error().
		Err(err).
		Fields(fieldsOrNil(fields)).
		CallerSkipFrame(1).
		Msg(msg)
}

// Fatal logs err at Fatal level and terminates the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().
		Err(err).
		Fields(fieldsOrNil(fields)).
		CallerSkipFrame(1).
		Msg(msg)
}
