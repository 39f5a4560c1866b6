package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monoforge/monoforge/internal/infrastructure/container"
	"github.com/monoforge/monoforge/internal/version"
)

// CommandContext carries what every workspace command needs.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer builds the dependency container before handler runs. The
// system config file comes from the system_config tool setting; an empty
// value means ~/.monoforge/config.yaml.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default().With("command", cmd.CommandPath())

		c, err := container.New(container.Options{
			SystemConfigPath: viper.GetString("system_config"),
			Logger:           logger,
			Version:          version.Get().Version,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return handler(&CommandContext{Container: c, Logger: logger, Context: ctx}, cmd, args)
	}
}
