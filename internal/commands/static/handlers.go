package staticcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/lint"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		options := generator.BuildOptions{
			IncludeDrafts: msg.IncludeDrafts,
			IncludeFuture: msg.IncludeFuture,
			SkipLint:      msg.SkipLint,
			DryRun:        msg.DryRun,
		}
		if len(msg.Sections) > 0 {
			options.Sections = normalizeSections(msg.Sections)
		}

		result, err := service.Build(ctx, options)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"pages_built":    result.PagesBuilt,
				"pages_skipped":  result.PagesSkipped,
				"assets_built":   result.AssetsBuilt,
				"assets_skipped": result.AssetsSkipped,
				"duration_ms":    result.Duration.Milliseconds(),
				"dry_run":        result.DryRun,
			}).Info("static.command.build.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Sections) > 0 {
				fields["sections"] = len(msg.Sections)
			}
			if msg.IncludeDrafts {
				fields["include_drafts"] = true
			}
			if msg.IncludeFuture {
				fields["include_future"] = true
			}
			if msg.SkipLint {
				fields["skip_lint"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LintContentHandler runs the content lint checker as a standalone command.
type LintContentHandler struct {
	inner *commands.Handler[LintContentCommand]
}

// NewLintContentHandler constructs a handler around the provided content linter.
func NewLintContentHandler(checker generator.ContentLinter, logger interfaces.Logger, opts ...commands.HandlerOption[LintContentCommand]) *LintContentHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg LintContentCommand) error {
		if checker == nil {
			return generator.ErrServiceDisabled
		}

		report, err := checker.CheckTree(ctx)
		if err != nil {
			return err
		}
		if msg.ReportTarget != nil {
			msg.ReportTarget(report)
		}
		if report == nil {
			report = &lint.Report{}
		}

		logging.WithFields(baseLogger, map[string]any{
			"files_checked": report.FilesChecked,
			"errors":        len(report.Errors()),
			"warnings":      len(report.Warnings()),
		}).Info("static.command.lint.completed")

		strict := msg.Strict || checker.FailOnWarnings()
		if report.Failed(strict) {
			return fmt.Errorf("staticcmd: lint reported %d errors and %d warnings", len(report.Errors()), len(report.Warnings()))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintContentCommand]{
		commands.WithLogger[LintContentCommand](baseLogger),
		commands.WithOperation[LintContentCommand]("static.lint"),
		commands.WithMessageFields(func(msg LintContentCommand) map[string]any {
			fields := map[string]any{}
			if msg.Strict {
				fields["strict"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintContentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintContentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[LintContentCommand].
func (h *LintContentHandler) Execute(ctx context.Context, msg LintContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func normalizeSections(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, section := range values {
		trimmed := strings.TrimSpace(section)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
