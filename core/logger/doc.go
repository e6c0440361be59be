// Package logger provides structured logging utilities built on Go's standard
// slog package: a factory with environment presets and a set of pre-built
// attribute helpers for common logging scenarios.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("parishkit"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("session established",
//		logger.Component("session"),
//		logger.Event("login"),
//	)
//
// # Environment Presets
//
//	// Development: text format, debug level, stdout
//	devLogger := logger.New(logger.WithDevelopment("parishkit"))
//
//	// Production: JSON format, info level, stdout
//	prodLogger := logger.New(logger.WithProduction("parishkit"))
//
// # Attribute Helpers
//
// Helpers use the empty Attr pattern for nil safety, so calls like
// log.Error("request failed", logger.Error(err)) need no explicit nil checks:
//
//	log.Error("request failed",
//		logger.Error(err),
//		logger.Method("GET"),
//		logger.Path("/api/members"),
//		logger.StatusCode(502),
//	)
package logger
