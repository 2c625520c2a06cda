// Package logging builds the slog.Logger used by the flexlogin tools:
// JSON or text handler, console or a lumberjack-rotated file.
package logging
