// Package logger provides structured logging for httppipe using zerolog.
//
// Loggers are level-gated. Callers that build expensive messages should
// check Enabled before composing them:
//
//	log := logger.Get("httppipe.policy")
//	if log.Enabled(logger.LevelDebug) {
//	    log.Debug(buildTrace(req))
//	}
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
