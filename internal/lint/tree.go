package lint

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// TreeConfig configures a content-tree lint run.
type TreeConfig struct {
	// Pattern limits checked files (defaults to "*.md").
	Pattern string
	// DefaultSection is used when no section directory matches.
	DefaultSection string
	// Sections lists the top-level directories treated as sections.
	Sections []string
}

// TreeChecker walks a content filesystem and lints every matching file.
// It satisfies the build gate contract used by the static generator.
type TreeChecker struct {
	service *Service
	fsys    fs.FS
	cfg     TreeConfig
}

// NewTreeChecker wraps a lint service with a filesystem walk.
func NewTreeChecker(service *Service, fsys fs.FS, cfg TreeConfig) *TreeChecker {
	if strings.TrimSpace(cfg.Pattern) == "" {
		cfg.Pattern = "*.md"
	}
	return &TreeChecker{service: service, fsys: fsys, cfg: cfg}
}

// CheckTree collects every matching file under the root and runs the
// full rule set, including the cross-file uniqueness checks.
func (c *TreeChecker) CheckTree(ctx context.Context) (*Report, error) {
	if c.service == nil {
		return nil, fmt.Errorf("lint: checker service required")
	}
	if c.fsys == nil {
		return &Report{Findings: []Finding{}}, nil
	}

	var files []SourceFile
	err := fs.WalkDir(c.fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if match, err := filepath.Match(c.cfg.Pattern, filepath.Base(path)); err != nil || !match {
			return nil
		}
		data, err := fs.ReadFile(c.fsys, path)
		if err != nil {
			return fmt.Errorf("lint: read %s: %w", path, err)
		}
		files = append(files, SourceFile{
			Path:    path,
			Section: c.detectSection(path),
			Data:    data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.service.CheckFiles(ctx, files)
}

// FailOnWarnings reports the wrapped service's strictness.
func (c *TreeChecker) FailOnWarnings() bool {
	if c.service == nil {
		return false
	}
	return c.service.FailOnWarnings()
}

// detectSection maps the first path segment onto a known section,
// mirroring how the markdown loader assigns sections on import.
func (c *TreeChecker) detectSection(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	if len(segments) > 1 {
		first := strings.TrimPrefix(segments[0], "_")
		for _, section := range c.cfg.Sections {
			if first == section {
				return section
			}
		}
	}
	return c.cfg.DefaultSection
}
