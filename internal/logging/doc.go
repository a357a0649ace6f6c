// Package logging provides structured JSON logging for webfactory.
//
// The dashboard runs in the terminal's alternate screen, so log output goes
// to a file ({dir}/debug.log) rather than stderr. CLI commands may log to
// stderr by passing an empty directory.
//
//	logger, err := logging.NewLogger(dir, logging.LevelInfo)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithComponent("poller").WithProject(id)
//	log.Info("status fetched", "status", "running")
//
// Child loggers share the parent's file. Use [NopLogger] in tests.
package logging
