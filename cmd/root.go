package cmd

import (
	"fmt"
	"os"

	"ctxpack/pkg/config"
	"ctxpack/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logger is shared by the subcommands. Execute seeds it and --debug or
// CTXPACK_LOG_LEVEL rebuild it before a subcommand runs.
var logger = zap.NewNop()

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "ctxpack",
	Short: "ctxpack packs a project into upload-sized Markdown chunks",
	Long: `ctxpack walks a project, filters it with .gptignore rules and built-in defaults,
renders a directory tree and every included file into one Markdown document, and
splits that document into chunks that fit an upload size limit. It can also redact
secret-looking values from a project in place or into a mirror copy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		level := os.Getenv(config.EnvLogLevel)
		if !debug && level == "" {
			return nil
		}
		l, err := logging.Setup(debug, level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// Execute runs the root command with base as the default logger.
func Execute(base *zap.Logger) error {
	if base != nil {
		logger = base
	}
	return RootCmd.Execute()
}
