package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	staticcmd "github.com/goliatone/go-press/internal/commands/static"
	"github.com/goliatone/go-press/internal/lint"
	"github.com/goliatone/go-press/internal/scaffold"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runLint(os.Args[1:]); err != nil {
		log.Fatalf("press lint: %v", err)
	}
}

func runLint(args []string) error {
	bootstrap.LoadEnv()

	fs := flag.NewFlagSet("press-lint", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	strict := fs.Bool("strict", false, "Treat warnings as failures")
	show := fs.Bool("show", false, "Render the offending files to the terminal")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:     *contentDir,
		EnableMarkdown: true,
		FailOnWarnings: *strict,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module.Linter == nil {
		return fmt.Errorf("content linter not configured; check that %s exists", *contentDir)
	}

	handler := staticcmd.NewLintContentHandler(module.Linter, module.Logger)
	cmd := staticcmd.LintContentCommand{
		Strict: *strict,
		ReportTarget: func(report *lint.Report) {
			printReport(report, *contentDir, *show)
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute lint command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "content lint passed")

	return nil
}

func printReport(report *lint.Report, contentDir string, show bool) {
	if report == nil {
		return
	}
	fmt.Fprintf(os.Stdout, "checked %d files: %d errors, %d warnings\n",
		report.FilesChecked, len(report.Errors()), len(report.Warnings()))

	shown := map[string]bool{}
	for _, finding := range report.Findings {
		fmt.Fprintf(os.Stdout, "  %s %s [%s]: %s\n",
			finding.Severity, finding.Path, finding.Rule, finding.Message)
		if !show || finding.Path == "" || shown[finding.Path] {
			continue
		}
		shown[finding.Path] = true
		rendered, err := scaffold.Preview(filepath.Join(contentDir, finding.Path), 80)
		if err != nil {
			continue
		}
		fmt.Fprintln(os.Stdout, rendered)
	}
}
