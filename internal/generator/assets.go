package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-press/internal/themes"
)

// AssetSource enumerates and opens auxiliary files copied verbatim into
// the build output, such as the site's static directory.
type AssetSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewFSAssetSource wraps a filesystem as an AssetSource. A nil fsys
// yields an empty source.
func NewFSAssetSource(fsys fs.FS) AssetSource {
	return fsAssetSource{fsys: fsys}
}

type fsAssetSource struct {
	fsys fs.FS
}

func (s fsAssetSource) List(ctx context.Context) ([]string, error) {
	if s.fsys == nil {
		return nil, nil
	}
	var out []string
	err := fs.WalkDir(s.fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generator: walk static assets: %w", err)
	}
	return out, nil
}

func (s fsAssetSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("generator: static source not configured")
	}
	file, err := s.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("generator: open static asset %s: %w", name, err)
	}
	return file, nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

// staticOwner keys static-dir entries in the manifest alongside theme
// assets, which are keyed by theme name.
const staticOwner = "static"

func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	manifest *buildManifest,
	baseDir string,
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if !s.cfg.CopyAssets {
		return summary, nil
	}

	dirCache := map[string]struct{}{}
	keep := map[string]struct{}{}

	if theme := buildCtx.Theme; theme != nil {
		assets, err := themes.ListAssets(theme)
		if err != nil {
			return summary, fmt.Errorf("generator: list theme assets: %w", err)
		}
		for _, asset := range assets {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			source := asset
			copied, err := s.copyAsset(ctx, writer, dirCache, manifest, assetCopyRequest{
				Owner:   theme.Name,
				Source:  source,
				DestRel: source,
				BaseDir: baseDir,
				Open: func() (io.ReadCloser, error) {
					return theme.FS().Open(source)
				},
			})
			if err != nil {
				return summary, err
			}
			keep[manifest.assetKey(theme.Name, source)] = struct{}{}
			if copied {
				summary.Built++
			} else {
				summary.Skipped++
			}
		}
	}

	if s.deps.Static != nil {
		entries, err := s.deps.Static.List(ctx)
		if err != nil {
			return summary, err
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			source := entry
			copied, err := s.copyAsset(ctx, writer, dirCache, manifest, assetCopyRequest{
				Owner:   staticOwner,
				Source:  source,
				DestRel: source,
				BaseDir: baseDir,
				Open: func() (io.ReadCloser, error) {
					return s.deps.Static.Open(ctx, source)
				},
			})
			if err != nil {
				return summary, err
			}
			keep[manifest.assetKey(staticOwner, source)] = struct{}{}
			if copied {
				summary.Built++
			} else {
				summary.Skipped++
			}
		}
	}

	manifest.pruneAssets(keep)
	return summary, nil
}

type assetCopyRequest struct {
	Owner   string
	Source  string
	DestRel string
	BaseDir string
	Open    func() (io.ReadCloser, error)
}

// copyAsset writes one asset and records it in the manifest. It reports
// false when the incremental check found the destination current.
func (s *service) copyAsset(
	ctx context.Context,
	writer artifactWriter,
	dirCache map[string]struct{},
	manifest *buildManifest,
	req assetCopyRequest,
) (bool, error) {
	reader, err := req.Open()
	if err != nil {
		return false, err
	}
	data, err := io.ReadAll(reader)
	closeErr := reader.Close()
	if err != nil {
		return false, fmt.Errorf("generator: read asset %s: %w", req.Source, err)
	}
	if closeErr != nil {
		return false, closeErr
	}

	fullPath := joinOutputPath(req.BaseDir, req.DestRel)
	checksum := computeHash(data)

	if s.cfg.Incremental && manifest.shouldSkipAsset(req.Owner, req.Source, checksum, fullPath) {
		return false, nil
	}

	if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
		return false, err
	}

	writeReq := writeFileRequest{
		Path:        fullPath,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryAsset,
		ContentType: detectAssetContentType(req.DestRel),
		Checksum:    checksum,
		Metadata: map[string]string{
			"owner":  req.Owner,
			"source": req.Source,
		},
	}
	if err := writer.WriteFile(ctx, writeReq); err != nil {
		return false, err
	}

	manifest.setAsset(manifestAsset{
		Key:      manifest.assetKey(req.Owner, req.Source),
		Theme:    req.Owner,
		Source:   req.Source,
		Output:   fullPath,
		Checksum: checksum,
		Size:     int64(len(data)),
		CopiedAt: s.now(),
	})
	return true, nil
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "woff", "woff2":
		return "font/" + ext
	case "txt":
		return "text/plain; charset=utf-8"
	case "xml":
		return "application/xml"
	case "webmanifest":
		return "application/manifest+json"
	default:
		return "application/octet-stream"
	}
}
