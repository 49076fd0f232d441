package markdown

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/domain"
	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrPostServiceRequired = errors.New("markdown importer: post service is required")
	ErrSlugMissing         = errors.New("markdown importer: slug is required")
	ErrSectionMissing      = errors.New("markdown importer: section could not be determined")
)

// ImporterConfig encapsulates dependencies required to persist markdown documents.
type ImporterConfig struct {
	Posts  interfaces.PostService
	Logger interfaces.Logger
}

// Importer orchestrates conversion of markdown documents into stored posts.
type Importer struct {
	posts  interfaces.PostService
	logger interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		posts:  cfg.Posts,
		logger: cfg.Logger,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}
	acc := newImportAccumulator()
	if err := i.applyDocument(ctx, doc, opts, true, acc); err != nil {
		acc.addError(err)
	}
	return acc.result(), firstError(acc.errors)
}

// ImportDocuments imports an arbitrary slice of documents. When several
// documents share a slug only the one with the latest path is applied.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}

	acc := newImportAccumulator()
	for _, doc := range i.dedupeDocuments(docs) {
		if err := i.applyDocument(ctx, doc, opts, true, acc); err != nil {
			acc.addError(err)
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally archives posts
// whose source files disappeared.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}

	impAcc := newImportAccumulator()
	deduped := i.dedupeDocuments(docs)
	for _, doc := range deduped {
		if err := i.applyDocument(ctx, doc, opts.ImportOptions, opts.UpdateExisting, impAcc); err != nil {
			impAcc.addError(err)
		}
	}

	acc := newSyncAccumulator()
	acc.merge(impAcc.result())

	if opts.ArchiveOrphaned {
		if err := i.archiveOrphaned(ctx, deduped, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions, updateExisting bool, acc *importAccumulator) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	slug := strings.TrimSpace(doc.FrontMatter.Slug)
	section := resolveSection(doc, opts)
	if section == "" {
		return fmt.Errorf("%w: %s", ErrSectionMissing, doc.FilePath)
	}

	title := strings.TrimSpace(doc.FrontMatter.Title)
	if title == "" {
		title = fallbackTitle(slug)
	}

	layout := strings.TrimSpace(doc.FrontMatter.Layout)
	if layout == "" {
		layout = strings.TrimSpace(opts.DefaultLayout)
	}
	author := strings.TrimSpace(doc.FrontMatter.Author)
	if author == "" {
		author = strings.TrimSpace(opts.DefaultAuthor)
	}

	status := selectStatus(doc, section)
	publishAt := publishTime(doc)
	checksum := hex.EncodeToString(doc.Checksum)
	actor := identity.AuthorUUID(author)

	existing, err := i.posts.GetBySlug(ctx, slug, interfaces.PostReadOptions{Section: section})
	if err != nil {
		return fmt.Errorf("markdown importer: post lookup %s: %w", slug, err)
	}

	if existing == nil {
		if opts.DryRun {
			acc.skip(slug)
			return nil
		}

		createReq := interfaces.PostCreateRequest{
			Slug:       slug,
			Section:    section,
			Layout:     layout,
			Title:      title,
			Summary:    optionalString(doc.FrontMatter.Summary),
			Author:     author,
			Body:       string(doc.Body),
			BodyHTML:   string(doc.BodyHTML),
			Tags:       doc.FrontMatter.Tags,
			Permalink:  strings.TrimSpace(doc.FrontMatter.Permalink),
			Reviewers:  doc.FrontMatter.Reviewers,
			Status:     status,
			PublishAt:  publishAt,
			SourcePath: doc.FilePath,
			Checksum:   checksum,
			CreatedBy:  actor,
			UpdatedBy:  actor,
			Metadata:   documentMetadata(doc),
		}

		record, createErr := i.posts.Create(ctx, createReq)
		if createErr != nil {
			return fmt.Errorf("markdown importer: create post %s: %w", slug, createErr)
		}
		acc.created(record.Slug)
		return nil
	}

	if existing.Checksum == checksum {
		acc.skip(existing.Slug)
		return nil
	}
	if !updateExisting || opts.DryRun {
		acc.skip(existing.Slug)
		return nil
	}

	body := string(doc.Body)
	bodyHTML := string(doc.BodyHTML)
	permalink := strings.TrimSpace(doc.FrontMatter.Permalink)
	sourcePath := doc.FilePath

	updateReq := interfaces.PostUpdateRequest{
		ID:         existing.ID,
		Title:      &title,
		Summary:    optionalString(doc.FrontMatter.Summary),
		Layout:     optionalString(layout),
		Author:     optionalString(author),
		Body:       &body,
		BodyHTML:   &bodyHTML,
		Tags:       doc.FrontMatter.Tags,
		Permalink:  &permalink,
		Reviewers:  doc.FrontMatter.Reviewers,
		Status:     &status,
		PublishAt:  publishAt,
		SourcePath: &sourcePath,
		Checksum:   &checksum,
		UpdatedBy:  actor,
		Metadata:   documentMetadata(doc),
	}

	updated, updateErr := i.posts.Update(ctx, updateReq)
	if updateErr != nil {
		return fmt.Errorf("markdown importer: update post %s: %w", slug, updateErr)
	}
	acc.updated(updated.Slug)
	return nil
}

// archiveOrphaned archives file-backed posts whose slug no longer appears in
// the synced document set. Posts created through the API (empty SourcePath)
// are never touched.
func (i *Importer) archiveOrphaned(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	existing, err := i.posts.List(ctx, interfaces.PostListOptions{
		Section:       opts.Section,
		IncludeDrafts: true,
		IncludeFuture: true,
	})
	if err != nil {
		return fmt.Errorf("markdown importer: list posts: %w", err)
	}

	docSlugs := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		docSlugs[strings.TrimSpace(doc.FrontMatter.Slug)] = struct{}{}
	}

	for _, record := range existing {
		if record.SourcePath == "" {
			continue
		}
		if record.Status == string(domain.StatusArchived) {
			continue
		}
		if _, ok := docSlugs[record.Slug]; ok {
			continue
		}
		if opts.DryRun {
			acc.archived++
			continue
		}
		if _, err := i.posts.Archive(ctx, record.ID); err != nil {
			return fmt.Errorf("markdown importer: archive post %s: %w", record.Slug, err)
		}
		acc.archived++
	}

	return nil
}

func validateDocument(doc *interfaces.Document) error {
	if doc == nil {
		return errors.New("markdown importer: nil document")
	}
	if strings.TrimSpace(doc.FrontMatter.Slug) == "" {
		return fmt.Errorf("%w: %s", ErrSlugMissing, doc.FilePath)
	}
	return nil
}

func resolveSection(doc *interfaces.Document, opts interfaces.ImportOptions) string {
	if section := strings.TrimSpace(opts.Section); section != "" {
		return section
	}
	return strings.TrimSpace(doc.Section)
}

// dedupeDocuments keeps one document per slug. Documents are ordered by
// path so runs stay deterministic, and when two files claim the same slug
// the later path wins with a warning instead of failing the run.
func (i *Importer) dedupeDocuments(docs []*interfaces.Document) []*interfaces.Document {
	sorted := make([]*interfaces.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			sorted = append(sorted, doc)
		}
	}
	slices.SortFunc(sorted, func(a, b *interfaces.Document) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})

	seen := map[string]int{}
	out := make([]*interfaces.Document, 0, len(sorted))
	for _, doc := range sorted {
		slug := strings.TrimSpace(doc.FrontMatter.Slug)
		if slug == "" {
			out = append(out, doc)
			continue
		}
		if idx, ok := seen[slug]; ok {
			if i.logger != nil {
				i.logger.Warn("duplicate slug, keeping later file",
					"slug", slug,
					"kept", doc.FilePath,
					"superseded", out[idx].FilePath,
				)
			}
			out[idx] = doc
			continue
		}
		seen[slug] = len(out)
		out = append(out, doc)
	}
	return out
}

func fallbackTitle(slug string) string {
	if slug == "" {
		return "Untitled"
	}
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// selectStatus derives the initial status: explicit draft flags and the
// drafts section stay hidden, everything else imports as published. Future
// dates still go through the published path; visibility is deferred by
// PublishAt.
func selectStatus(doc *interfaces.Document, section string) string {
	if doc.FrontMatter.Draft {
		return string(domain.StatusDraft)
	}
	if section == "drafts" {
		return string(domain.StatusDraft)
	}
	return string(domain.StatusPublished)
}

func publishTime(doc *interfaces.Document) *time.Time {
	if ts, err := ParseDate(doc.FrontMatter.Date); err == nil {
		return &ts
	}
	return nil
}

func documentMetadata(doc *interfaces.Document) map[string]any {
	return map[string]any{
		"source":       "markdown",
		"path":         doc.FilePath,
		"front_matter": doc.FrontMatter.Raw,
		"imported_mod": doc.LastModified,
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

type importAccumulator struct {
	createdSlugs []string
	updatedSlugs []string
	skippedSlugs []string
	errors       []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdSlugs: []string{},
		updatedSlugs: []string{},
		skippedSlugs: []string{},
		errors:       []error{},
	}
}

func (a *importAccumulator) created(slug string) {
	if slug != "" {
		a.createdSlugs = append(a.createdSlugs, slug)
	}
}

func (a *importAccumulator) updated(slug string) {
	if slug != "" {
		a.updatedSlugs = append(a.updatedSlugs, slug)
	}
}

func (a *importAccumulator) skip(slug string) {
	if slug != "" {
		a.skippedSlugs = append(a.skippedSlugs, slug)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedSlugs: a.createdSlugs,
		UpdatedSlugs: a.updatedSlugs,
		SkippedSlugs: a.skippedSlugs,
		Errors:       a.errors,
	}
}

type syncAccumulator struct {
	created  int
	updated  int
	archived int
	skipped  int
	errors   []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedSlugs)
	s.updated += len(res.UpdatedSlugs)
	s.skipped += len(res.SkippedSlugs)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created:  s.created,
		Updated:  s.updated,
		Archived: s.archived,
		Skipped:  s.skipped,
		Errors:   s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
