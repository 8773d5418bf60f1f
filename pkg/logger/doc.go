// Package logger provides a structured logging interface for the replay fetcher.
//
// It wraps the zerolog library and offers:
// - Leveled logging (Debug, Info, Warn, Error)
// - Structured logging with fields
// - Colored console output on stderr
// - Optional JSON file output rotated by lumberjack
// - A global logger instance and a TestLogger for assertions in tests
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//
//	log := logger.GetLogger()
//	log.Info("Run started")
//	log.WithField("battle_id", "gen9ou-123").Info("Replay saved")
//
// Configuration options:
// - Level: debug, info, warn, error
// - File: path of the JSON log file (empty for console only)
// - MaxSize: megabytes before rotation
// - MaxBackups: rotated files to keep
// - MaxAge: days to keep rotated files
// - Compress: gzip rotated files
package logger
