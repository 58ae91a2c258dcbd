// Package logging provides a tiny abstraction over structured loggers so the
// engine can depend on a minimal interface (Logger) while letting embedders
// plug slog, zerolog or anything else. Adapters for both are included; tests
// use NoOpLogger.
package logging
