package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-press/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsPass(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_AllowsDisabledGeneratorWithoutOutput(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresOutputDirWhenGeneratorEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = " "
	cfg.Site.BaseURL = "https://blog.example.com"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresBaseURLForFeeds(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrSiteBaseURLRequired) {
		t.Fatalf("expected ErrSiteBaseURLRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsRelativeBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true
	cfg.Site.BaseURL = "/blog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrSiteBaseURLInvalid) {
		t.Fatalf("expected ErrSiteBaseURLInvalid, got %v", err)
	}
}

func TestConfigValidate_AllowsDisabledSitemapWithoutBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true
	cfg.Generator.GenerateSitemap = false
	cfg.Generator.GenerateFeeds = false

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresMarkdownFeature(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.Enabled = true

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrMarkdownFeatureRequired) {
		t.Fatalf("expected ErrMarkdownFeatureRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresContentDirWhenMarkdownEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = "  "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrMarkdownContentDirRequired) {
		t.Fatalf("expected ErrMarkdownContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresSchedulingForCronRegistration(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.Enabled = true
	cfg.Commands.AutoRegisterCron = true

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrCommandsCronRequiresScheduling) {
		t.Fatalf("expected ErrCommandsCronRequiresScheduling, got %v", err)
	}
}

func TestConfigValidate_RejectsPermalinkPatternWithoutSlug(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.PermalinkPattern = "/:year/:month/"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrPermalinkPatternInvalid) {
		t.Fatalf("expected ErrPermalinkPatternInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresServerAddrWhenEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Server.Enabled = true
	cfg.Server.Addr = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrServerAddrRequired) {
		t.Fatalf("expected ErrServerAddrRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
