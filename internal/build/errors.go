package build

import "errors"

// Sentinel stage errors. They are wrapped with the underlying cause so
// callers can tell which stage failed.
var (
	ErrConfig  = errors.New("docsite: config error")
	ErrPresets = errors.New("docsite: preset error")
	ErrPlugins = errors.New("docsite: plugin error")
	ErrExecute = errors.New("docsite: plugin execution error")
	ErrRecord  = errors.New("docsite: record error")
)

// stageError joins a stage sentinel with its cause. Both remain reachable
// through errors.Is and errors.As.
func stageError(stage, cause error) error {
	return errors.Join(stage, cause)
}
