package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrThemesFeatureRequired indicates inconsistent theme configuration.
var ErrThemesFeatureRequired = errors.New("press config: themes feature must be enabled to configure themes")

// ErrCommandsCronRequiresScheduling ensures automatic cron wiring only runs when scheduling is enabled.
var ErrCommandsCronRequiresScheduling = errors.New("press config: command cron auto-registration requires scheduling to be enabled")

// ErrAdvancedCacheRequiresEnabledCache ensures advanced cache builds only when cache is enabled.
var ErrAdvancedCacheRequiresEnabledCache = errors.New("press config: advanced cache feature requires cache to be enabled")

var ErrMarkdownFeatureRequired = errors.New("press config: markdown feature must be enabled to configure markdown")
var ErrMarkdownContentDirRequired = errors.New("press config: markdown content directory is required when markdown is enabled")
var ErrGeneratorOutputDirRequired = errors.New("press config: generator output directory is required when generator is enabled")
var ErrSiteBaseURLRequired = errors.New("press config: site base url is required when sitemap or feeds are enabled")
var ErrSiteBaseURLInvalid = errors.New("press config: site base url must be an absolute http(s) url")
var ErrPermalinkPatternInvalid = errors.New("press config: permalink pattern must contain the :slug token")
var ErrPageSizeInvalid = errors.New("press config: page size must be zero or positive")
var ErrFeedLimitInvalid = errors.New("press config: feed limit must be zero or positive")
var ErrServerAddrRequired = errors.New("press config: server address is required when the preview server is enabled")
var ErrLoggingProviderRequired = errors.New("press config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the publishing
// engine. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled   bool
	Site      SiteConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Routes    RoutesConfig
	Themes    ThemeConfig
	Features  Features
	Commands  CommandsConfig
	Markdown  MarkdownConfig
	Lint      LintConfig
	Generator GeneratorConfig
	Server    ServerConfig
	Activity  ActivityConfig
	Logging   LoggingConfig
}

// SiteConfig describes the published site. The generator snapshots these
// values into every build.
type SiteConfig struct {
	Title       string
	Description string
	// BaseURL is the absolute root the site is served from, e.g.
	// "https://blog.example.com". Feeds and the sitemap require it.
	BaseURL  string
	Language string
	// Author is the default author applied when front matter omits one.
	Author  string
	Authors []AuthorConfig
	// PermalinkPattern expands per post; recognized tokens are :year,
	// :month, :day, :slug and :section.
	PermalinkPattern string
	// PageSize bounds posts per archive page. Zero disables pagination.
	PageSize int
}

// AuthorConfig is an entry in the site author registry used by lint.
type AuthorConfig struct {
	Name  string
	Email string
	URL   string
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RoutesConfig captures routing configuration for site URL resolution.
type RoutesConfig struct {
	RouteConfig  *urlkit.Config
	DefaultGroup string
}

// ThemeConfig captures configuration for the themes module.
type ThemeConfig struct {
	BasePath     string
	DefaultTheme string
}

// Features toggles module functionality.
type Features struct {
	Themes        bool
	Scheduling    bool
	Markdown      bool
	Activity      bool
	AdvancedCache bool
	Logger        bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
	AutoRegisterCron       bool
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown ingestion.
type MarkdownConfig struct {
	Enabled         bool
	ContentDir      string
	Pattern         string
	Recursive       bool
	SectionPatterns map[string]string
	DefaultSection  string
	Sections        []string
	Parser          MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// LintConfig captures content validation behaviour.
type LintConfig struct {
	Enabled bool
	// FailOnWarnings escalates warning findings to build failures.
	FailOnWarnings bool
	// SchemaPath optionally points at a JSON schema validated against the raw
	// front matter of every post.
	SchemaPath       string
	MaxSummaryLength int
}

// GeneratorConfig captures behaviour for the static site build.
type GeneratorConfig struct {
	Enabled          bool
	OutputDir        string
	StaticDir        string
	CleanBuild       bool
	Incremental      bool
	CopyAssets       bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateFeeds    bool
	TagFeeds         bool
	FeedLimit        int
	IncludeDrafts    bool
	IncludeFuture    bool
	Workers          int
	RenderTimeout    time.Duration
	AssetCopyTimeout time.Duration
}

// ServerConfig captures the preview server behaviour.
type ServerConfig struct {
	Enabled       bool
	Addr          string
	Watch         bool
	WatchDebounce time.Duration
	SearchLimit   int
}

// ActivityConfig captures audit trail behaviour.
type ActivityConfig struct {
	Channel string
}

// DefaultConfig returns opinionated defaults for a single-author blog.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			Language:         "en",
			PermalinkPattern: "/:year/:month/:slug/",
			PageSize:         10,
		},
		Storage: StorageConfig{
			Provider: "bun",
			Driver:   "sqlite3",
			DSN:      "file:press.db?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Routes: RoutesConfig{
			DefaultGroup: "site",
		},
		Themes: ThemeConfig{
			BasePath: "themes",
		},
		Features: Features{},
		Commands: CommandsConfig{},
		Markdown: MarkdownConfig{
			ContentDir:      "content",
			Pattern:         "*.md",
			Recursive:       true,
			SectionPatterns: map[string]string{},
			DefaultSection:  "posts",
		},
		Lint: LintConfig{
			Enabled:          true,
			MaxSummaryLength: 280,
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			StaticDir:       "static",
			CleanBuild:      true,
			Incremental:     false,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
			TagFeeds:        false,
			FeedLimit:       20,
			Workers:         0,
		},
		Server: ServerConfig{
			Addr:          ":4000",
			Watch:         true,
			WatchDebounce: 300 * time.Millisecond,
			SearchLimit:   20,
		},
		Activity: ActivityConfig{
			Channel: "press",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if !cfg.Features.Themes {
		if strings.TrimSpace(cfg.Themes.DefaultTheme) != "" {
			return ErrThemesFeatureRequired
		}
	}
	if cfg.Commands.AutoRegisterCron && !cfg.Features.Scheduling {
		return ErrCommandsCronRequiresScheduling
	}
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
	}
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if cfg.Generator.GenerateSitemap || cfg.Generator.GenerateFeeds {
			base := strings.TrimSpace(cfg.Site.BaseURL)
			if base == "" {
				return ErrSiteBaseURLRequired
			}
			parsed, err := url.Parse(base)
			if err != nil || !parsed.IsAbs() || parsed.Host == "" {
				return fmt.Errorf("%w: %s", ErrSiteBaseURLInvalid, base)
			}
		}
		if cfg.Generator.FeedLimit < 0 {
			return ErrFeedLimitInvalid
		}
	}
	if pattern := strings.TrimSpace(cfg.Site.PermalinkPattern); pattern != "" && !strings.Contains(pattern, ":slug") {
		return fmt.Errorf("%w: %s", ErrPermalinkPatternInvalid, pattern)
	}
	if cfg.Site.PageSize < 0 {
		return ErrPageSizeInvalid
	}
	if cfg.Server.Enabled && strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
