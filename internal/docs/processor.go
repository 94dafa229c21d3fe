// Package docs extracts per-document metadata (id, title, content
// fingerprint and last update) from a docs directory.
package docs

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/lastupdate"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// DefaultPath is the docs directory relative to the site directory.
const DefaultPath = "docs"

// Doc is the metadata of one document.
type Doc struct {
	ID            string `json:"id" yaml:"id"`
	Source        string `json:"source" yaml:"source"`
	Title         string `json:"title" yaml:"title"`
	Fingerprint   string `json:"fingerprint" yaml:"fingerprint"`
	LastUpdatedBy string `json:"lastUpdatedBy,omitempty" yaml:"lastUpdatedBy,omitempty"`
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty" yaml:"lastUpdatedAt,omitempty"`
}

// Options controls a metadata pass.
type Options struct {
	// Path is the docs directory, relative to the site directory unless absolute.
	Path string

	ShowLastUpdateAuthor bool
	ShowLastUpdateTime   bool

	// Concurrency bounds parallel document processing. Zero uses GOMAXPROCS.
	Concurrency int
}

// Processor runs metadata passes.
type Processor struct {
	extractor *lastupdate.Extractor
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithExtractor sets the last-update extractor. Defaults to lastupdate.Default().
func WithExtractor(e *lastupdate.Extractor) ProcessorOption {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) ProcessorOption {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		extractor: lastupdate.Default(),
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process discovers the documents under siteDir/opts.Path and returns their
// metadata in lexical path order.
func (p *Processor) Process(ctx context.Context, siteDir string, opts Options) ([]Doc, error) {
	start := time.Now()
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	docsDir := opts.Path
	if !filepath.IsAbs(docsDir) {
		docsDir = filepath.Join(siteDir, docsDir)
	}

	info, err := os.Stat(docsDir)
	if err != nil || !info.IsDir() {
		return nil, errors.DocsError("docs directory not found").
			WithCategory(errors.CategoryNotFound).
			WithCause(fmt.Errorf("%w: %s", derrors.ErrDocsPathNotFound, docsDir)).
			WithContext("path", docsDir).
			Build()
	}

	files, err := Discover(docsDir, p.logger)
	if err != nil {
		return nil, errors.DocsError("cannot discover documents").WithCause(err).WithContext("path", docsDir).Build()
	}

	docs, err := p.processAll(ctx, siteDir, files, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(docs))
	for _, d := range docs {
		if prev, dup := seen[d.ID]; dup {
			return nil, errors.DocsError("two documents share an id").
				WithCause(fmt.Errorf("%w: %s", derrors.ErrDuplicateID, d.ID)).
				WithContext("id", d.ID).
				WithContext("sources", []string{prev, d.Source}).
				Build()
		}
		seen[d.ID] = d.Source
	}

	p.recorder.ObserveDocsPass(time.Since(start), len(docs))
	p.logger.Info("Processed documents",
		logfields.Path(docsDir),
		logfields.Count(len(docs)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return docs, nil
}

func (p *Processor) processAll(ctx context.Context, siteDir string, files []DocFile, opts Options) ([]Doc, error) {
	if len(files) == 0 {
		return []Doc{}, nil
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	sem := make(chan struct{}, concurrency)
	docs := make([]Doc, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f DocFile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			docs[i], errs[i] = p.processFile(ctx, siteDir, f, opts)
		}(i, f)
	}
	wg.Wait()

	if err := stderrors.Join(errs...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.DocsError("metadata pass canceled").WithCause(ctxErr).Build()
		}
		return nil, err
	}
	return docs, nil
}

func (p *Processor) processFile(ctx context.Context, siteDir string, f DocFile, opts Options) (Doc, error) {
	source := f.RelativePath
	if rel, err := filepath.Rel(siteDir, f.Path); err == nil {
		source = filepath.ToSlash(rel)
	}

	// #nosec G304 -- path comes from walking the configured docs directory
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return Doc{}, errors.DocsError("cannot read document").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrFileReadFailed, err)).
			WithContext("source", source).
			Build()
	}

	raw, body, err := SplitFrontMatter(content)
	if err != nil {
		return Doc{}, frontMatterError(source, err)
	}
	fm, err := ParseFrontMatter(raw)
	if err != nil {
		return Doc{}, frontMatterError(source, err)
	}

	doc := Doc{ID: f.ID(), Source: source, Title: fm.Title}
	if fm.ID != "" {
		doc.ID = fm.ID
	}
	if doc.Title == "" {
		doc.Title = HeadingTitle(body)
	}
	if doc.Title == "" {
		doc.Title = f.Name
	}

	if doc.Fingerprint, err = Fingerprint(fm.Fields, body); err != nil {
		return Doc{}, errors.DocsError("cannot fingerprint document").WithCause(err).WithContext("source", source).Build()
	}

	if opts.ShowLastUpdateAuthor || opts.ShowLastUpdateTime {
		author, ts, err := p.lastUpdate(ctx, f.Path, fm.LastUpdate)
		if err != nil {
			return Doc{}, frontMatterError(source, err)
		}
		if opts.ShowLastUpdateAuthor {
			doc.LastUpdatedBy = author
		}
		if opts.ShowLastUpdateTime {
			doc.LastUpdatedAt = ts
		}
	}
	return doc, nil
}

// lastUpdate merges front matter overrides with version control data. The
// extractor is skipped when the override provides both author and date.
func (p *Processor) lastUpdate(ctx context.Context, path string, override *LastUpdateOverride) (string, int64, error) {
	var (
		author string
		ts     int64
		hasTS  bool
		err    error
	)
	if override != nil {
		author = override.Author
		if ts, hasTS, err = override.Timestamp(); err != nil {
			return "", 0, err
		}
	}
	if author != "" && hasTS {
		return author, ts, nil
	}

	if data := p.extractor.GetFileLastUpdate(ctx, path); data != nil {
		if author == "" {
			author = data.Author
		}
		if !hasTS {
			ts = data.Timestamp
		}
	}
	return author, ts, nil
}

func frontMatterError(source string, err error) error {
	return errors.DocsError("invalid front matter").
		WithCause(fmt.Errorf("%w: %w", derrors.ErrInvalidFrontMatter, err)).
		WithContext("source", source).
		Build()
}
