package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DocFile is a discovered document source.
type DocFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash-separated path relative to the docs directory
	Name         string // File name without extension
	Extension    string // File extension including the dot
}

// Discover walks docsDir and returns every Markdown document in lexical
// order. Files and directories whose name starts with "_" or "." are skipped.
func Discover(docsDir string, logger *slog.Logger) ([]DocFile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var files []DocFile

	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()

		if d.IsDir() {
			if path != docsDir && isExcludedName(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcludedName(name) || !isMarkdownFile(name) {
			return nil
		}

		relPath, err := filepath.Rel(docsDir, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}

		ext := filepath.Ext(name)
		files = append(files, DocFile{
			Path:         path,
			RelativePath: filepath.ToSlash(relPath),
			Name:         strings.TrimSuffix(name, ext),
			Extension:    ext,
		})
		logger.Debug("Discovered document", logfields.File(filepath.ToSlash(relPath)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, docsDir, err)
	}
	return files, nil
}

func isExcludedName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func isMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	default:
		return false
	}
}

// ID returns the default document id: the relative path without extension.
func (f DocFile) ID() string {
	return strings.TrimSuffix(f.RelativePath, f.Extension)
}
