// Package logging provides a thin subsystem-tagged wrapper around log/slog.
//
// Every call site passes a subsystem name (e.g. "Auth", "Server") so that
// log output can be filtered by component. The underlying handler is a
// standard slog text handler writing to the stream chosen at Init time.
//
// Token values must never be passed to any logging function.
package logging
