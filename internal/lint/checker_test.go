package lint

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/markdown"
)

const cleanPost = `---
layout: post
title: Functional Reactive Programming
slug: functional-reactive-programming
date: 2014-04-03 09:21:10 -0500
author: tomas
tags: [swift, reactive]
permalink: /2014/04/functional-reactive-programming/
reviewers:
  - natasha
---

Body copy.
`

func TestCheckCleanPost(t *testing.T) {
	svc := newChecker(t, Config{
		KnownLayouts: []string{"post", "page"},
		KnownAuthors: []string{"tomas"},
	})

	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/2014-04-03-functional-reactive-programming.md", "posts", cleanPost),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if len(report.Findings) != 0 {
		t.Fatalf("expected clean report, got %#v", report.Findings)
	}
	if report.FilesChecked != 1 {
		t.Fatalf("expected 1 file checked, got %d", report.FilesChecked)
	}
}

func TestCheckMissingTitleAndDate(t *testing.T) {
	svc := newChecker(t, Config{})

	source := "---\nlayout: post\n---\n\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/untitled.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	assertFinding(t, report, RuleTitleRequired, SeverityError)
	assertFinding(t, report, RuleDateRequired, SeverityError)
	if !report.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestCheckDateRequiredSkipsPages(t *testing.T) {
	svc := newChecker(t, Config{})

	source := "---\nlayout: page\ntitle: About\n---\n\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "pages/about.md", "pages", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hasRule(report, RuleDateRequired) {
		t.Fatalf("pages should not require a date: %#v", report.Findings)
	}
}

func TestCheckDateFormat(t *testing.T) {
	svc := newChecker(t, Config{})

	source := "---\ntitle: Bad Date\ndate: April 3rd, 2014\n---\n\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/bad-date.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	finding := assertFinding(t, report, RuleDateFormat, SeverityError)
	if finding.Field != "date" {
		t.Fatalf("expected date field, got %q", finding.Field)
	}
}

func TestCheckPermalinkShape(t *testing.T) {
	svc := newChecker(t, Config{})

	cases := []string{
		"---\ntitle: A\ndate: 2014-01-01\npermalink: 2014/01/a/\n---\nBody.\n",
		"---\ntitle: B\ndate: 2014-01-02\npermalink: https://example.com/b/\n---\nBody.\n",
		"---\ntitle: C\ndate: 2014-01-03\npermalink: /2014/../secrets/\n---\nBody.\n",
	}

	for idx, source := range cases {
		report, err := svc.Check(context.Background(), []Input{
			newInput(t, "posts/perm.md", "posts", source),
		})
		if err != nil {
			t.Fatalf("Check case %d: %v", idx, err)
		}
		assertFinding(t, report, RulePermalinkPath, SeverityError)
	}

	valid := "---\ntitle: D\ndate: 2014-01-04\npermalink: /2014/01/d/\n---\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/perm.md", "posts", valid),
	})
	if err != nil {
		t.Fatalf("Check valid permalink: %v", err)
	}
	if hasRule(report, RulePermalinkPath) {
		t.Fatalf("valid permalink flagged: %#v", report.Findings)
	}
}

func TestCheckRegistryWarnings(t *testing.T) {
	svc := newChecker(t, Config{
		KnownLayouts: []string{"post"},
		KnownAuthors: []string{"tomas"},
	})

	source := "---\nlayout: listicle\ntitle: X\ndate: 2014-01-01\nauthor: stranger\n---\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/x.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	assertFinding(t, report, RuleLayoutKnown, SeverityWarning)
	assertFinding(t, report, RuleAuthorKnown, SeverityWarning)

	if report.Failed(false) {
		t.Fatalf("warnings alone should not fail a lenient run")
	}
	if !report.Failed(true) {
		t.Fatalf("warnings should fail a strict run")
	}
}

func TestCheckDuplicatePermalink(t *testing.T) {
	svc := newChecker(t, Config{})

	first := "---\ntitle: A\ndate: 2014-01-01\npermalink: /2014/01/shared/\n---\nBody.\n"
	second := "---\ntitle: B\ndate: 2014-01-02\npermalink: /2014/01/shared/\n---\nBody.\n"

	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/a.md", "posts", first),
		newInput(t, "posts/b.md", "posts", second),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	finding := assertFinding(t, report, RuleDuplicatePermalink, SeverityError)
	if finding.Path != "posts/b.md" {
		t.Fatalf("expected duplicate reported on second file, got %q", finding.Path)
	}
}

func TestCheckDuplicateSlugWithinSection(t *testing.T) {
	svc := newChecker(t, Config{})

	first := "---\ntitle: A\nslug: shared\ndate: 2014-01-01\n---\nBody.\n"
	second := "---\ntitle: B\nslug: shared\ndate: 2014-01-02\n---\nBody.\n"
	page := "---\ntitle: C\nslug: shared\n---\nBody.\n"

	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/a.md", "posts", first),
		newInput(t, "posts/b.md", "posts", second),
		newInput(t, "pages/c.md", "pages", page),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	duplicates := 0
	for _, f := range report.Findings {
		if f.Rule == RuleDuplicateSlug {
			duplicates++
		}
	}
	if duplicates != 1 {
		t.Fatalf("expected one duplicate slug finding, got %d: %#v", duplicates, report.Findings)
	}
}

func TestCheckSummaryLength(t *testing.T) {
	svc := newChecker(t, Config{MaxSummaryLength: 16})

	source := "---\ntitle: A\ndate: 2014-01-01\nsummary: " + strings.Repeat("x", 40) + "\n---\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/a.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	assertFinding(t, report, RuleSummaryLength, SeverityWarning)
}

func TestCheckDisabledRules(t *testing.T) {
	svc := newChecker(t, Config{DisabledRules: []string{RuleDateRequired}})

	source := "---\ntitle: No Date\n---\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/no-date.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hasRule(report, RuleDateRequired) {
		t.Fatalf("disabled rule still ran: %#v", report.Findings)
	}
}

func TestCheckFilesRecoversFromParseFailures(t *testing.T) {
	svc := newChecker(t, Config{})

	unterminated := []byte("---\ntitle: Broken\nBody without closing delimiter.\n")
	report, err := svc.CheckFiles(context.Background(), []SourceFile{
		{Path: "posts/broken.md", Section: "posts", Data: unterminated},
	})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}

	assertFinding(t, report, RuleFrontMatterParse, SeverityError)
	assertFinding(t, report, RuleFrontMatterDelimiters, SeverityError)
}

func TestCheckMissingDelimiters(t *testing.T) {
	svc := newChecker(t, Config{})

	source := "# Just a heading\n\nNo front matter at all.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/plain.md", "posts", source),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	assertFinding(t, report, RuleFrontMatterDelimiters, SeverityError)
}

func TestCheckFrontMatterSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{"type": "string"},
		},
		"required": []any{"category"},
	}

	svc := newChecker(t, Config{Schema: schema})

	missing := "---\ntitle: A\ndate: 2014-01-01\n---\nBody.\n"
	report, err := svc.Check(context.Background(), []Input{
		newInput(t, "posts/a.md", "posts", missing),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	assertFinding(t, report, RuleFrontMatterSchema, SeverityError)

	present := "---\ntitle: A\ndate: 2014-01-01\ncategory: tooling\n---\nBody.\n"
	report, err = svc.Check(context.Background(), []Input{
		newInput(t, "posts/a.md", "posts", present),
	})
	if err != nil {
		t.Fatalf("Check with category: %v", err)
	}
	if hasRule(report, RuleFrontMatterSchema) {
		t.Fatalf("schema should pass: %#v", report.Findings)
	}
}

func TestNewServiceRejectsInvalidSchema(t *testing.T) {
	_, err := NewService(Config{Schema: map[string]any{"type": 12}})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

// Helpers ---------------------------------------------------------------------

func newChecker(tb testing.TB, cfg Config) *Service {
	tb.Helper()
	svc, err := NewService(cfg)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func newInput(tb testing.TB, path, section, source string) Input {
	tb.Helper()
	doc, err := markdown.BuildDocument(path, section, []byte(source), time.Now())
	if err != nil {
		tb.Fatalf("BuildDocument %s: %v", path, err)
	}
	return Input{Document: doc, Source: []byte(source)}
}

func assertFinding(tb testing.TB, report *Report, rule string, severity Severity) Finding {
	tb.Helper()
	for _, f := range report.Findings {
		if f.Rule == rule {
			if f.Severity != severity {
				tb.Fatalf("rule %s severity = %s, want %s", rule, f.Severity, severity)
			}
			return f
		}
	}
	tb.Fatalf("expected %s finding, got %#v", rule, report.Findings)
	return Finding{}
}

func hasRule(report *Report, rule string) bool {
	for _, f := range report.Findings {
		if f.Rule == rule {
			return true
		}
	}
	return false
}
