// Package logger wraps zerolog behind a small interface used by every
// other package of the backup tool.
//
// Console output goes to stderr so that progress lines on stdout stay
// clean. When a log file is configured, JSON lines are appended to it
// as well.
//
//	l, err := logger.New(&cfg.Logging)
//	l.WithField("account", "staff.tumblr.com").Info("Backup started")
//
// Tests use NewTestLogger, which records every message for assertions,
// or NewNopLogger when output does not matter.
package logger
