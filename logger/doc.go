// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying structured fields. Loggers are enriched
// from a context with the call's correlation id and, when a span is
// recording, its trace and span ids.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "orders").WithComponent("server")
//	log.Info("call completed", logger.Fields(logger.FieldAPIID, id, logger.FieldAttempt, 2))
package logger
