package lint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrNilInput      = errors.New("lint: nil document input")
	ErrSchemaInvalid = errors.New("lint: front matter schema invalid")

	errUnclosedFrontMatter = errors.New("front matter block is never closed")
)

// Config controls which rules run and the registries they consult.
type Config struct {
	// DisabledRules lists rule names to skip.
	DisabledRules []string
	KnownLayouts  []string
	KnownAuthors  []string
	// MaxSummaryLength bounds the summary field; zero disables the check.
	MaxSummaryLength int
	// FailOnWarnings escalates warnings when callers consult Report.Failed.
	FailOnWarnings bool
	// Schema optionally validates every document's raw front matter against a
	// JSON schema.
	Schema map[string]any
}

// Service runs lint rules over parsed documents.
type Service struct {
	cfg      Config
	rules    []Rule
	disabled map[string]struct{}
	env      Env
	schema   *frontMatterSchema
	logger   interfaces.Logger
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger attaches a logger for per-run diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRules appends custom rules to the default set.
func WithRules(rules ...Rule) ServiceOption {
	return func(s *Service) {
		for _, rule := range rules {
			if rule != nil {
				s.rules = append(s.rules, rule)
			}
		}
	}
}

// NewService builds a checker with the default rule set. A configured schema
// is compiled eagerly so invalid schemas fail fast.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	svc := &Service{
		cfg:      cfg,
		rules:    defaultRules(),
		disabled: map[string]struct{}{},
		env: Env{
			KnownLayouts:     toSet(cfg.KnownLayouts),
			KnownAuthors:     toSet(cfg.KnownAuthors),
			MaxSummaryLength: cfg.MaxSummaryLength,
		},
	}

	for _, name := range cfg.DisabledRules {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			svc.disabled[trimmed] = struct{}{}
		}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}

	if len(cfg.Schema) > 0 {
		schema, err := compileFrontMatterSchema(cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
		}
		svc.schema = schema
	}

	return svc, nil
}

// Check runs every enabled rule over the supplied inputs plus the cross-file
// uniqueness checks, returning a deterministic report.
func (s *Service) Check(ctx context.Context, inputs []Input) (*Report, error) {
	report := &Report{Findings: []Finding{}}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if in.Document == nil {
			return nil, ErrNilInput
		}

		report.FilesChecked++
		for _, rule := range s.rules {
			if s.ruleDisabled(rule.Name()) {
				continue
			}
			report.add(rule.Check(in, s.env)...)
		}
		if s.schema != nil && !s.ruleDisabled(RuleFrontMatterSchema) {
			report.add(s.schema.check(in)...)
		}
	}

	if !s.ruleDisabled(RuleDuplicateSlug) {
		report.add(duplicateSlugFindings(inputs)...)
	}
	if !s.ruleDisabled(RuleDuplicatePermalink) {
		report.add(duplicatePermalinkFindings(inputs)...)
	}

	sortFindings(report.Findings)

	if s.logger != nil {
		s.logger.Debug("lint run complete",
			"files", report.FilesChecked,
			"errors", len(report.Errors()),
			"warnings", len(report.Warnings()),
		)
	}

	return report, nil
}

// SourceFile is a raw file destined for linting.
type SourceFile struct {
	Path    string
	Section string
	Data    []byte
}

// CheckFiles parses each file leniently and lints the result. Files whose
// front matter cannot be parsed still produce findings instead of aborting
// the whole run.
func (s *Service) CheckFiles(ctx context.Context, files []SourceFile) (*Report, error) {
	inputs := make([]Input, 0, len(files))
	var parseFindings []Finding

	for _, file := range files {
		doc, err := markdown.BuildDocument(file.Path, file.Section, file.Data, time.Time{})
		if err == nil {
			// An unclosed block parses as front matter with no body,
			// so treat it as a parse failure explicitly.
			if opened, closed := markdown.HasFrontMatter(file.Data); opened && !closed {
				err = errUnclosedFrontMatter
			}
		}
		if err != nil {
			doc = &interfaces.Document{FilePath: file.Path, Section: file.Section}
			parseFindings = append(parseFindings, Finding{
				Rule:     RuleFrontMatterParse,
				Severity: SeverityError,
				Path:     file.Path,
				Message:  fmt.Sprintf("front matter is not well-formed: %v", err),
			})
		}
		inputs = append(inputs, Input{Document: doc, Source: file.Data})
	}

	report, err := s.Check(ctx, inputs)
	if err != nil {
		return nil, err
	}
	report.add(parseFindings...)
	sortFindings(report.Findings)
	return report, nil
}

// FailOnWarnings reports the configured strictness so callers can feed
// Report.Failed without re-reading config.
func (s *Service) FailOnWarnings() bool {
	return s.cfg.FailOnWarnings
}

func (s *Service) ruleDisabled(name string) bool {
	_, ok := s.disabled[name]
	return ok
}

// duplicateSlugFindings flags slugs claimed by more than one file within the
// same section.
func duplicateSlugFindings(inputs []Input) []Finding {
	owners := map[string]string{}
	var findings []Finding

	for _, in := range inputs {
		if in.Document == nil {
			continue
		}
		slug := strings.TrimSpace(in.Document.FrontMatter.Slug)
		if slug == "" {
			continue
		}
		key := in.Document.Section + "\x00" + slug
		if prior, ok := owners[key]; ok {
			findings = append(findings, errorFinding(RuleDuplicateSlug, in, "slug",
				fmt.Sprintf("slug %q already used by %s", slug, prior)))
			continue
		}
		owners[key] = in.Document.FilePath
	}
	return findings
}

// duplicatePermalinkFindings flags permalinks claimed by more than one file.
func duplicatePermalinkFindings(inputs []Input) []Finding {
	owners := map[string]string{}
	var findings []Finding

	for _, in := range inputs {
		if in.Document == nil {
			continue
		}
		permalink := strings.TrimSpace(in.Document.FrontMatter.Permalink)
		if permalink == "" {
			continue
		}
		if prior, ok := owners[permalink]; ok {
			findings = append(findings, errorFinding(RuleDuplicatePermalink, in, "permalink",
				fmt.Sprintf("permalink %q already used by %s", permalink, prior)))
			continue
		}
		owners[permalink] = in.Document.FilePath
	}
	return findings
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}
