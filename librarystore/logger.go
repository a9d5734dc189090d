package librarystore

// Logger is the logging contract shared by the storage engine, the HTTP
// layer and the scheduler. A *slog.Logger satisfies it directly.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes, row counts, durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that cause operation failures.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
