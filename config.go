package press

import "github.com/goliatone/go-press/internal/runtimeconfig"

var (
	ErrThemesFeatureRequired             = runtimeconfig.ErrThemesFeatureRequired
	ErrCommandsCronRequiresScheduling    = runtimeconfig.ErrCommandsCronRequiresScheduling
	ErrAdvancedCacheRequiresEnabledCache = runtimeconfig.ErrAdvancedCacheRequiresEnabledCache
	ErrMarkdownFeatureRequired           = runtimeconfig.ErrMarkdownFeatureRequired
	ErrMarkdownContentDirRequired        = runtimeconfig.ErrMarkdownContentDirRequired
	ErrGeneratorOutputDirRequired        = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrSiteBaseURLRequired               = runtimeconfig.ErrSiteBaseURLRequired
	ErrSiteBaseURLInvalid                = runtimeconfig.ErrSiteBaseURLInvalid
	ErrPermalinkPatternInvalid           = runtimeconfig.ErrPermalinkPatternInvalid
	ErrPageSizeInvalid                   = runtimeconfig.ErrPageSizeInvalid
	ErrFeedLimitInvalid                  = runtimeconfig.ErrFeedLimitInvalid
	ErrServerAddrRequired                = runtimeconfig.ErrServerAddrRequired
	ErrLoggingProviderRequired           = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown            = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid               = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid              = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	AuthorConfig         = runtimeconfig.AuthorConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	RoutesConfig         = runtimeconfig.RoutesConfig
	ThemeConfig          = runtimeconfig.ThemeConfig
	Features             = runtimeconfig.Features
	LoggingConfig        = runtimeconfig.LoggingConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LintConfig           = runtimeconfig.LintConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
	ServerConfig         = runtimeconfig.ServerConfig
	ActivityConfig       = runtimeconfig.ActivityConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
