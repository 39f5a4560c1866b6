package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "monoforge",
	Short: "Readme generation and release aggregation for multi-project workspaces",
	Long: `monoforge manages a workspace of nested projects described by monoforge.yaml.
It generates README files from project metadata, wires per-publication
release tasks across every configured repository, and reports workspace
problems before they break a release.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr()))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "tool settings file (default $HOME/.monoforge.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug records")
	flags.StringVar(&logFormat, "log-format", "text", "log record format: text or json")
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

// initConfig reads tool settings. A missing settings file is not an error;
// MONOFORGE_* variables apply either way.
func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Debug("no home directory, skipping tool settings file", "error", err)
			break
		}
		viper.SetConfigFile(filepath.Join(home, ".monoforge.yaml"))
	}

	viper.SetEnvPrefix("MONOFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			slog.Warn("failed to read tool settings", "file", cfgFile, "error", err)
		}
		return
	}
	slog.Debug("using tool settings", "file", viper.ConfigFileUsed())
}

// newLogger builds the process logger. Records go to stderr so that
// command output on stdout stays machine readable.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(viper.GetString("log_format"), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
