package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/lint"
)

const (
	buildSiteMessageType   = "press.static.build"
	cleanSiteMessageType   = "press.static.clean"
	lintContentMessageType = "press.static.lint"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution that produced a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// LintCallback receives the lint report produced by a lint command execution.
type LintCallback func(*lint.Report)

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Sections       []string       `json:"sections,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	IncludeFuture  bool           `json:"include_future,omitempty"`
	SkipLint       bool           `json:"skip_lint,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures section filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, section := range m.Sections {
		if strings.TrimSpace(section) == "" {
			errs["sections"] = validation.NewError("press.static.build.section_invalid", "sections must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generator artifacts from the configured storage backend.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// LintContentCommand runs the content lint checker without building the site.
type LintContentCommand struct {
	// Strict fails the command on warnings in addition to errors.
	Strict       bool         `json:"strict,omitempty"`
	ReportTarget LintCallback `json:"-"`
}

// Type implements command.Message.
func (LintContentCommand) Type() string { return lintContentMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (LintContentCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}
