// Package logging provides structured logging for Huelink Core.
//
// It wraps the standard library's log/slog with configuration-driven
// setup (level, format, destination) and default service attributes.
//
// Components receive a *Logger and may derive scoped loggers:
//
//	log := logging.New(cfg.Logging, version)
//	streamLog := log.WithComponent("stream")
package logging
