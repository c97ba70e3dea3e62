// Package logging configures log/slog for mcpkit.
//
// Logs go to stderr so they never mix with command output or --json lines.
// The default level is Warn; each -v lowers it (Info, Debug, then
// [LevelTrace], which the selection engine uses for per-key events).
// MCPKIT_DEBUG=1 and MCPKIT_DEBUG=2 do the same when no -v is given.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		File:   "/tmp/mcpkit.log",
//	})
//
// The text [Handler] colors levels on terminals and masks attribute values
// that look like credentials (see package redact). With Config.File set,
// every record is also written as JSON to a size-rotated file.
//
// Commands put their logger on the context with [NewContext]; library code
// calls [FromContext] and falls back to slog.Default. Tests use [ForTest]
// or [NewDiscard].
package logging
