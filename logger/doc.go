// Package logger provides structured logging for seqkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The stream engine logs
// only at debug level through the "stream" component logger; nothing is
// written unless the level allows it.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("lines")
//	log.Debug("opened resource", logger.Fields("path", path))
package logger
