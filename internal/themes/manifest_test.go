package themes

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	gotheme "github.com/goliatone/go-theme"
)

func TestLoadManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"theme.json": &fstest.MapFile{Data: []byte(`{
			"name": "aurora",
			"description": "A test theme.",
			"version": "1.2.0",
			"author": "mattt",
			"layouts": {
				"post": "layouts/post.html",
				"index": "layouts/index.html"
			},
			"assets": {"files": {"css": "assets/css/site.css"}}
		}`)},
	}

	manifest, err := LoadManifest(fsys)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}

	if manifest.Name != "aurora" {
		t.Fatalf("expected name aurora, got %q", manifest.Name)
	}
	if manifest.Version != "1.2.0" {
		t.Fatalf("expected version 1.2.0, got %q", manifest.Version)
	}
	if manifest.Author == nil || *manifest.Author != "mattt" {
		t.Fatalf("expected author mattt, got %v", manifest.Author)
	}
	if got := manifest.Layouts["post"]; got != "layouts/post.html" {
		t.Fatalf("expected post layout mapping, got %q", got)
	}
	if got := manifest.Assets.List(); len(got) != 1 || got[0] != "assets/css/site.css" {
		t.Fatalf("unexpected assets: %v", got)
	}
	if err := manifest.Validate(); err != nil {
		t.Fatalf("expected valid manifest, got %v", err)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(fstest.MapFS{})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestParseManifestInvalidJSON(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(`{"name": `))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestManifestValidate(t *testing.T) {
	cases := []struct {
		name     string
		manifest Manifest
		want     error
	}{
		{
			name:     "missing name",
			manifest: Manifest{Version: "1.0.0"},
			want:     ErrThemeNameRequired,
		},
		{
			name:     "missing version",
			manifest: Manifest{Name: "aurora"},
			want:     ErrThemeVersionRequired,
		},
		{
			name: "empty layout key",
			manifest: Manifest{
				Name:    "aurora",
				Version: "1.0.0",
				Layouts: map[string]string{"": "layouts/post.html"},
			},
			want: ErrManifestInvalid,
		},
		{
			name: "empty layout file",
			manifest: Manifest{
				Name:    "aurora",
				Version: "1.0.0",
				Layouts: map[string]string{"post": "  "},
			},
			want: ErrManifestInvalid,
		},
		{
			name: "empty asset file",
			manifest: Manifest{
				Name:    "aurora",
				Version: "1.0.0",
				Assets:  ManifestAssets{Files: map[string]string{"css": " "}},
			},
			want: ErrManifestInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEmbeddedManifestLoadsThroughBothDecoders(t *testing.T) {
	fsys := DefaultThemeFS()

	manifest, err := LoadManifest(fsys)
	if err != nil {
		t.Fatalf("load embedded manifest: %v", err)
	}
	if got := manifest.Assets.List(); len(got) != 1 || got[0] != "assets/css/site.css" {
		t.Fatalf("unexpected embedded assets: %v", got)
	}

	themeManifest, err := gotheme.LoadDir(fsys, ".")
	if err != nil {
		t.Fatalf("load embedded manifest via go-theme: %v", err)
	}
	if got := themeManifest.Assets.Files["css"]; got != "assets/css/site.css" {
		t.Fatalf("unexpected go-theme asset mapping: %q", got)
	}
}
