package lint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Rule names, also usable in Config.DisabledRules.
const (
	RuleFrontMatterDelimiters = "front-matter-delimiters"
	RuleTitleRequired         = "title-required"
	RuleDateRequired          = "date-required"
	RuleDateFormat            = "date-format"
	RulePermalinkPath         = "permalink-path"
	RuleLayoutKnown           = "layout-known"
	RuleAuthorKnown           = "author-known"
	RuleTagsShape             = "tags-shape"
	RuleReviewersShape        = "reviewers-shape"
	RuleSummaryLength         = "summary-length"
	RuleDuplicateSlug         = "duplicate-slug"
	RuleDuplicatePermalink    = "duplicate-permalink"
	RuleFrontMatterSchema     = "front-matter-schema"
	RuleFrontMatterParse      = "front-matter-parse"
)

// Input pairs a parsed document with its raw source so rules can inspect both.
type Input struct {
	Document *interfaces.Document
	Source   []byte
}

// Env exposes site-level registries to rules.
type Env struct {
	// KnownLayouts whitelists layout names; empty disables the check.
	KnownLayouts map[string]struct{}
	// KnownAuthors whitelists author handles; empty disables the check.
	KnownAuthors map[string]struct{}
	// MaxSummaryLength bounds the summary field; zero disables the check.
	MaxSummaryLength int
}

// Rule checks one document and reports zero or more findings.
type Rule interface {
	Name() string
	Check(in Input, env Env) []Finding
}

func defaultRules() []Rule {
	return []Rule{
		frontMatterDelimitersRule{},
		titleRequiredRule{},
		dateRequiredRule{},
		dateFormatRule{},
		permalinkPathRule{},
		layoutKnownRule{},
		authorKnownRule{},
		tagsShapeRule{},
		reviewersShapeRule{},
		summaryLengthRule{},
	}
}

// frontMatterDelimitersRule enforces the file contract: a front matter block
// opened by a --- line at the top of the file and closed by a later one.
// Documents assembled in memory carry a nil Source and are exempt; only raw
// file bytes can violate the contract.
type frontMatterDelimitersRule struct{}

func (frontMatterDelimitersRule) Name() string { return RuleFrontMatterDelimiters }

func (r frontMatterDelimitersRule) Check(in Input, _ Env) []Finding {
	if in.Source == nil {
		return nil
	}
	opened, closed := markdown.HasFrontMatter(in.Source)
	if opened && closed {
		return nil
	}

	message := "file must open with a --- front matter delimiter"
	if opened && !closed {
		message = "front matter block is never closed by a --- line"
	}
	return []Finding{errorFinding(r.Name(), in, "", message)}
}

// titleRequiredRule requires a non-empty title on every document.
type titleRequiredRule struct{}

func (titleRequiredRule) Name() string { return RuleTitleRequired }

func (r titleRequiredRule) Check(in Input, _ Env) []Finding {
	if strings.TrimSpace(in.Document.FrontMatter.Title) != "" {
		return nil
	}
	return []Finding{errorFinding(r.Name(), in, "title", "title is required")}
}

// dateRequiredRule requires a date on posts. Pages and drafts may omit it.
type dateRequiredRule struct{}

func (dateRequiredRule) Name() string { return RuleDateRequired }

func (r dateRequiredRule) Check(in Input, _ Env) []Finding {
	if in.Document.Section != "posts" {
		return nil
	}
	if strings.TrimSpace(in.Document.FrontMatter.Date) != "" {
		return nil
	}
	return []Finding{errorFinding(r.Name(), in, "date", "posts require a date")}
}

// dateFormatRule validates date and updated values against the accepted
// ISO-8601 layouts.
type dateFormatRule struct{}

func (dateFormatRule) Name() string { return RuleDateFormat }

func (r dateFormatRule) Check(in Input, _ Env) []Finding {
	var findings []Finding

	if value := strings.TrimSpace(in.Document.FrontMatter.Date); value != "" && !markdown.IsValidDate(value) {
		findings = append(findings, errorFinding(r.Name(), in, "date",
			fmt.Sprintf("date %q is not a recognized ISO-8601 timestamp", value)))
	}
	if value := strings.TrimSpace(in.Document.FrontMatter.Updated); value != "" && !markdown.IsValidDate(value) {
		findings = append(findings, errorFinding(r.Name(), in, "updated",
			fmt.Sprintf("updated %q is not a recognized ISO-8601 timestamp", value)))
	}
	return findings
}

// permalinkPathRule ensures explicit permalinks are absolute URL paths.
type permalinkPathRule struct{}

func (permalinkPathRule) Name() string { return RulePermalinkPath }

func (r permalinkPathRule) Check(in Input, _ Env) []Finding {
	permalink := strings.TrimSpace(in.Document.FrontMatter.Permalink)
	if permalink == "" {
		return nil
	}
	if reason := invalidPermalinkReason(permalink); reason != "" {
		return []Finding{errorFinding(r.Name(), in, "permalink",
			fmt.Sprintf("permalink %q %s", permalink, reason))}
	}
	return nil
}

func invalidPermalinkReason(permalink string) string {
	if !strings.HasPrefix(permalink, "/") {
		return "must start with /"
	}
	if strings.ContainsAny(permalink, " \t") {
		return "must not contain whitespace"
	}
	parsed, err := url.Parse(permalink)
	if err != nil {
		return "is not a valid URL path"
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return "must be a path, not a full URL"
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "must not carry a query or fragment"
	}
	for _, segment := range strings.Split(strings.Trim(permalink, "/"), "/") {
		if segment == ".." || segment == "." {
			return "must not contain relative segments"
		}
	}
	return ""
}

// layoutKnownRule warns when a layout is not part of the site registry.
type layoutKnownRule struct{}

func (layoutKnownRule) Name() string { return RuleLayoutKnown }

func (r layoutKnownRule) Check(in Input, env Env) []Finding {
	if len(env.KnownLayouts) == 0 {
		return nil
	}
	layout := strings.TrimSpace(in.Document.FrontMatter.Layout)
	if layout == "" {
		return nil
	}
	if _, ok := env.KnownLayouts[layout]; ok {
		return nil
	}
	return []Finding{warningFinding(r.Name(), in, "layout",
		fmt.Sprintf("layout %q is not registered with the site", layout))}
}

// authorKnownRule warns when an author handle is not in the site registry.
type authorKnownRule struct{}

func (authorKnownRule) Name() string { return RuleAuthorKnown }

func (r authorKnownRule) Check(in Input, env Env) []Finding {
	if len(env.KnownAuthors) == 0 {
		return nil
	}
	author := strings.TrimSpace(in.Document.FrontMatter.Author)
	if author == "" {
		return nil
	}
	if _, ok := env.KnownAuthors[author]; ok {
		return nil
	}
	return []Finding{warningFinding(r.Name(), in, "author",
		fmt.Sprintf("author %q is not registered with the site", author))}
}

// tagsShapeRule warns about empty or repeated tags.
type tagsShapeRule struct{}

func (tagsShapeRule) Name() string { return RuleTagsShape }

func (r tagsShapeRule) Check(in Input, _ Env) []Finding {
	return checkStringList(r.Name(), in, "tags", in.Document.FrontMatter.Tags)
}

// reviewersShapeRule warns about empty or repeated reviewer handles.
type reviewersShapeRule struct{}

func (reviewersShapeRule) Name() string { return RuleReviewersShape }

func (r reviewersShapeRule) Check(in Input, _ Env) []Finding {
	return checkStringList(r.Name(), in, "reviewers", in.Document.FrontMatter.Reviewers)
}

func checkStringList(rule string, in Input, field string, values []string) []Finding {
	var findings []Finding
	seen := map[string]struct{}{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			findings = append(findings, warningFinding(rule, in, field,
				fmt.Sprintf("%s must not contain empty entries", field)))
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			findings = append(findings, warningFinding(rule, in, field,
				fmt.Sprintf("%s entry %q is repeated", field, trimmed)))
			continue
		}
		seen[key] = struct{}{}
	}
	return findings
}

// summaryLengthRule warns when a summary exceeds the configured bound.
type summaryLengthRule struct{}

func (summaryLengthRule) Name() string { return RuleSummaryLength }

func (r summaryLengthRule) Check(in Input, env Env) []Finding {
	if env.MaxSummaryLength <= 0 {
		return nil
	}
	summary := strings.TrimSpace(in.Document.FrontMatter.Summary)
	if length := len([]rune(summary)); length > env.MaxSummaryLength {
		return []Finding{warningFinding(r.Name(), in, "summary",
			fmt.Sprintf("summary is %d characters, limit is %d", length, env.MaxSummaryLength))}
	}
	return nil
}

func errorFinding(rule string, in Input, field, message string) Finding {
	return newFinding(rule, SeverityError, in, field, message)
}

func warningFinding(rule string, in Input, field, message string) Finding {
	return newFinding(rule, SeverityWarning, in, field, message)
}

func newFinding(rule string, severity Severity, in Input, field, message string) Finding {
	finding := Finding{
		Rule:     rule,
		Severity: severity,
		Field:    field,
		Message:  message,
	}
	if in.Document != nil {
		finding.Path = in.Document.FilePath
		finding.Slug = strings.TrimSpace(in.Document.FrontMatter.Slug)
	}
	return finding
}
