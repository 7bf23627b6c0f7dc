package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/cli"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/config"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	model      string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "legobuilder",
		Short: "Turn a LEGO set into an AI-generated alternate build",
		Long: `legobuilder loads the part list of a LEGO set, suggests what it is best
suited for, then asks an AI model for a build using only those parts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
		RunE: runInteractive,
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (overrides CONFIG_FILE)")
	rootCmd.Flags().StringVarP(&model, "model", "m", "", "Chat model to use (overrides OPENAI_MODEL)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(checkCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if model != "" {
		cfg.Model = model
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	service := builder.NewService(
		catalog.NewClient(catalog.Options{
			BaseURL:  cfg.RebrickableBaseURL,
			APIKey:   cfg.RebrickableAPIKey,
			PageSize: cfg.CatalogPageSize,
			Timeout:  cfg.CatalogTimeout,
		}, logger.Named("catalog")),
		generation.NewClient(generation.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
			Timeout: cfg.GenerationTimeout,
		}, logger.Named("generation")),
		logger.Named("builder"),
	)

	app := cli.New(service, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	if err := app.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newLogger writes to stderr so prompts and results own stdout
func newLogger(verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapConfig.Build()
}
