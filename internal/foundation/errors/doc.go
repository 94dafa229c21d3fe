// Package errors provides classified error primitives used across docsite.
//
// Key features:
//   - ErrorCategory: broad classification (config, preset, plugin, git, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: retry behavior
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and log levels for the command line
//
// Example usage:
//
//	err := errors.PresetError("preset factory failed").
//		WithCause(cause).
//		WithContext("preset", name).
//		Build()
package errors
