// Package logging holds the log/slog setup shared by the API server and the CLI.
//
// The server logs JSON to stdout; the CLI logs text to stderr so command output
// stays clean. LOG_LEVEL selects the level (debug, info, warn, error). Request
// scoped loggers carry the request_id set by the requestid middleware.
//
//	logger := logging.NewLogger()
//	logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
package logging
