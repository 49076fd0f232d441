// Package commands wires the press command handlers into host-provided
// registries, dispatchers, and cron schedulers.
package commands

import (
	"errors"

	command "github.com/goliatone/go-command"
	internalcmd "github.com/goliatone/go-press/internal/commands"
	markdowncmd "github.com/goliatone/go-press/internal/commands/markdown"
	staticcmd "github.com/goliatone/go-press/internal/commands/static"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher/cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return internalcmd.CommandLogger(provider, module)
	}

	// Markdown commands.
	if service := container.MarkdownService(); service != nil && cfg.Features.Markdown {
		gates := markdowncmd.FeatureGates{
			MarkdownEnabled: func() bool { return cfg.Features.Markdown },
		}
		handlerSet, err := markdowncmd.RegisterMarkdownCommands(nil, service, provider, gates)
		if err != nil {
			errs = errors.Join(errs, err)
		} else if handlerSet != nil {
			register(handlerSet.Import)
			register(handlerSet.Sync)

			if cfg.Commands.AutoRegisterCron && opts.CronRegistrar != nil {
				cronMsg := markdowncmd.SyncDirectoryCommand{
					Directory:      ".",
					UpdateExisting: true,
				}
				cronCfg := command.HandlerConfig{Expression: "@hourly"}
				if err := markdowncmd.RegisterMarkdownCron(markdowncmd.CronRegistrar(opts.CronRegistrar), handlerSet.Sync, cronCfg, cronMsg); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	// Static generator commands.
	if service := container.GeneratorService(); service != nil && cfg.Generator.Enabled {
		gates := staticcmd.FeatureGates{
			GeneratorEnabled: func() bool { return cfg.Generator.Enabled },
		}
		staticLogger := loggerFor("static")
		register(staticcmd.NewBuildSiteHandler(service, staticLogger, gates))
		register(staticcmd.NewCleanSiteHandler(service, staticLogger, gates))
	}

	// Lint commands.
	if checker := container.ContentLinter(); checker != nil && cfg.Lint.Enabled {
		register(staticcmd.NewLintContentHandler(checker, loggerFor("lint")))
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured and required features enabled")
	}

	return result, errs
}
