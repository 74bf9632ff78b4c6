package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command, a *app) logging.LogPathResult {
	loggingCfg := a.cfg.Logging

	if a.flags.logLevel != "" {
		loggingCfg.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		loggingCfg.Format = a.flags.logFormat
	}
	if a.flags.debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	runID := logging.GetOrGenerateRunID(ctx)
	ctx = logging.ContextWithRunID(ctx, runID)
	ctx = result.Logger.With().Str("run_id", runID).Logger().WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().
		Str("run_id", runID).
		Str("command", cmd.Name()).
		Str("config", a.cfgPath).
		Str("profile", a.cfg.Profile).
		Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
