// Package lastupdate reads the author and commit time of the most recent
// commit touching a file.
//
// Lookups never fail the caller: every problem is reported through the
// logger and yields a nil *Data. Results are not cached between calls.
package lastupdate

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// DefaultTimeout bounds a single history lookup.
const DefaultTimeout = 10 * time.Second

// GitRequiredWarning is logged once per Extractor when the backend is unavailable.
const GitRequiredWarning = "[WARNING] Sorry, the docs plugin last update options require Git."

// Lookup outcomes reported to the metrics recorder.
const (
	OutcomeFound       = "found"
	OutcomeNoHistory   = "no_history"
	OutcomeMissingFile = "missing_file"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)

// Data is the last update of a file.
type Data struct {
	Author    string `json:"author" yaml:"author"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// Time returns the timestamp as a time.Time in UTC.
func (d *Data) Time() time.Time {
	return time.Unix(d.Timestamp, 0).UTC()
}

// FormatTimestamp renders epoch seconds as RFC 3339 in UTC.
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

const (
	availabilityUnknown int32 = iota
	availabilityPresent
	availabilityMissing
)

// Extractor looks up last-update data through a Backend. It is safe for
// concurrent use.
type Extractor struct {
	backend  Backend
	logger   *slog.Logger
	recorder metrics.Recorder
	timeout  time.Duration

	availability atomic.Int32
	warned       atomic.Bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBackend selects the history backend. The default is the git CLI.
func WithBackend(b Backend) Option {
	return func(e *Extractor) {
		if b != nil {
			e.backend = b
		}
	}
}

// WithLogger sets the logger. By default slog.Default() is used at call time.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Extractor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithTimeout overrides DefaultTimeout. Zero or negative disables the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		backend:  NewCLIBackend(),
		recorder: metrics.NoopRecorder{},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backend returns the configured backend.
func (e *Extractor) Backend() Backend { return e.backend }

func (e *Extractor) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// GetFileLastUpdate returns the author and timestamp of the latest commit
// touching filePath, or nil when there is none or it cannot be determined.
func (e *Extractor) GetFileLastUpdate(ctx context.Context, filePath string) *Data {
	if filePath == "" {
		return nil
	}
	start := time.Now()
	data, outcome := e.lookup(ctx, filePath)
	e.recorder.ObserveLastUpdate(e.backend.Name(), outcome, time.Since(start))
	return data
}

func (e *Extractor) lookup(ctx context.Context, filePath string) (*Data, string) {
	if !e.available() {
		if e.warned.CompareAndSwap(false, true) {
			e.log().Warn(GitRequiredWarning, logfields.Backend(e.backend.Name()))
		}
		return nil, OutcomeUnavailable
	}

	if _, err := os.Stat(filePath); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			e.log().Error("Failed to retrieve git history because the file does not exist.",
				logfields.File(filePath))
			return nil, OutcomeMissingFile
		}
		e.log().Error("Failed to retrieve git history", logfields.File(filePath), logfields.Error(err))
		return nil, OutcomeFailed
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		e.log().Error("Failed to retrieve git history", logfields.File(filePath), logfields.Error(err))
		return nil, OutcomeFailed
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	data, err := e.backend.LastCommit(ctx, absPath)
	if err != nil {
		e.log().Error("Failed to retrieve git history",
			logfields.File(filePath),
			logfields.Backend(e.backend.Name()),
			logfields.Error(err))
		return nil, OutcomeFailed
	}
	if data == nil {
		return nil, OutcomeNoHistory
	}
	return data, OutcomeFound
}

// available checks the backend once. Concurrent first calls may both check.
func (e *Extractor) available() bool {
	switch e.availability.Load() {
	case availabilityPresent:
		return true
	case availabilityMissing:
		return false
	}
	ok := e.backend.Available()
	state := availabilityMissing
	if ok {
		state = availabilityPresent
	}
	e.availability.Store(state)
	return ok
}

var defaultExtractor atomic.Pointer[Extractor]

func init() {
	defaultExtractor.Store(New())
}

// Default returns the process-wide extractor used by GetFileLastUpdate.
func Default() *Extractor {
	return defaultExtractor.Load()
}

// SetDefault replaces the process-wide extractor and returns the previous one.
func SetDefault(e *Extractor) *Extractor {
	return defaultExtractor.Swap(e)
}

// GetFileLastUpdate queries the process-wide extractor.
func GetFileLastUpdate(ctx context.Context, filePath string) *Data {
	return Default().GetFileLastUpdate(ctx, filePath)
}
