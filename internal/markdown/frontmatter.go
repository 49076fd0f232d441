package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the Markdown
// body without delimiters, and any error encountered.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// HasFrontMatter reports whether the source opens with a front matter block
// and whether that block is terminated by a closing delimiter line.
func HasFrontMatter(source []byte) (opened bool, closed bool) {
	trimmed := bytes.TrimPrefix(source, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return false, false
	}

	line, rest, found := bytes.Cut(trimmed, []byte("\n"))
	if !found {
		return false, false
	}
	if len(bytes.TrimSpace(line)) != 3 {
		return false, false
	}

	for len(rest) > 0 {
		line, rest, _ = bytes.Cut(rest, []byte("\n"))
		candidate := bytes.TrimRight(line, "\r")
		if bytes.Equal(candidate, []byte("---")) || bytes.Equal(candidate, []byte("...")) {
			return true, true
		}
	}
	return true, false
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// section, raw content, and modification time. BodyHTML is intentionally left
// empty so callers can render lazily.
func BuildDocument(path string, section string, source []byte, modified time.Time) (*interfaces.Document, error) {
	frontmatter, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		Section:      section,
		FrontMatter:  frontmatter,
		Body:         body,
		LastModified: modified,
		Checksum:     Checksum(source),
	}, nil
}

type frontMatterEnvelope struct {
	Layout    string         `yaml:"layout"`
	Title     string         `yaml:"title"`
	Slug      string         `yaml:"slug"`
	Summary   string         `yaml:"summary"`
	Author    string         `yaml:"author"`
	Date      string         `yaml:"date"`
	Updated   string         `yaml:"updated"`
	Tags      []string       `yaml:"tags"`
	Permalink string         `yaml:"permalink"`
	Reviewers []string       `yaml:"reviewers"`
	Draft     bool           `yaml:"draft"`
	Custom    map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+10)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Layout != "" {
		raw["layout"] = env.Layout
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if env.Date != "" {
		raw["date"] = env.Date
	}
	if env.Updated != "" {
		raw["updated"] = env.Updated
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Permalink != "" {
		raw["permalink"] = env.Permalink
	}
	if len(env.Reviewers) > 0 {
		raw["reviewers"] = append([]string(nil), env.Reviewers...)
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Layout:    env.Layout,
		Title:     env.Title,
		Slug:      env.Slug,
		Summary:   env.Summary,
		Author:    env.Author,
		Date:      env.Date,
		Updated:   env.Updated,
		Tags:      append([]string(nil), env.Tags...),
		Permalink: env.Permalink,
		Reviewers: append([]string(nil), env.Reviewers...),
		Draft:     env.Draft,
		Custom:    cloneMap(env.Custom),
		Raw:       raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
