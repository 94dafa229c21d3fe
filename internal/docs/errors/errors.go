// Package errors provides sentinel errors for docs metadata passes.
package errors

import "errors"

var (
	// ErrDocsPathNotFound indicates the configured docs directory does not exist.
	ErrDocsPathNotFound = errors.New("documentation path not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the docs directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading a discovered document failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidFrontMatter indicates a document's YAML front matter could not be parsed.
	ErrInvalidFrontMatter = errors.New("invalid front matter")

	// ErrInvalidRelativePath indicates calculating a path relative to the docs directory failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")

	// ErrDuplicateID indicates two documents resolve to the same id.
	ErrDuplicateID = errors.New("duplicate document id")
)
