package config

import (
	"github.com/rshade/enrichr/internal/logging"
)

// ToLoggingConfig converts the logging section to logging.Config.
//
// The conversion applies these rules:
//   - Level, Format are copied directly ("text" is an alias for console)
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	format := lc.Format
	if format == "text" {
		format = logging.FormatConsole
	}

	return logging.Config{
		Level:  lc.Level,
		Format: format,
		Output: output,
		File:   lc.File,
	}
}
