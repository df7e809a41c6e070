// Package logging provides structured logging for the handoff broker.
//
// The broker never surfaces read failures to its callers (a corrupt queue is
// an empty queue, a corrupt signal is no signal). Those swallowed failures
// still need to be visible to whoever debugs a stuck handoff, so every broker
// component logs them through a [Logger] from this package.
//
// # Basic Usage
//
//	logger, err := logging.NewLoggerWithRotation("/project/.coordination/logs", "INFO",
//	    logging.RotationConfig{MaxSizeMB: 10, MaxBackups: 3})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithComponent("queue").Warn("queue unreadable, treating as empty",
//	    "path", path, "error", err)
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	testing := logger.WithSessionType("testing").WithComponent("signal")
//	testing.Info("signal consumed", "signal_type", "testing")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"signal consumed","session_type":"testing","component":"signal","signal_type":"testing"}
//
// # Log Rotation
//
// Loggers write through a [RotatingWriter], which renames
// handoff.log to handoff.log.1 (shifting older backups) when the size limit
// would be exceeded, optionally gzipping the rotated file.
//
// # Testing
//
// Use [NopLogger] to discard output.
package logging
