package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/config"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type dependencyCheck struct {
	name string
	dep  pinger
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the parts catalog, the generation service and redis are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		checks := []dependencyCheck{
			{"catalog", catalog.NewClient(catalog.Options{
				BaseURL: cfg.RebrickableBaseURL,
				APIKey:  cfg.RebrickableAPIKey,
				Timeout: cfg.CatalogTimeout,
			}, zap.NewNop())},
			{"generation", generation.NewClient(generation.Options{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   cfg.Model,
				Timeout: cfg.GenerationTimeout,
			}, zap.NewNop())},
		}

		if cfg.RedisURL != "" {
			rdb, err := store.NewRedis(ctx, cfg.RedisURL)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "redis: FAILED (%v)\n", err)
				return err
			}
			defer rdb.Close()
			checks = append(checks, dependencyCheck{"redis", rdb})
		}

		var failed int
		for _, c := range checks {
			if err := c.dep.Ping(ctx); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED (%v)\n", c.name, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", c.name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
		return nil
	},
}
