// Command orbit-cron performs one batch sweep over published workflows. An
// external scheduler invokes it on the cadence the deployment wants.
package main

import (
	"context"
	"os"

	"github.com/orbitflows/orbit/pkg/cmd"
	"github.com/orbitflows/orbit/pkg/config"
	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/handlers/aiagent"
	"github.com/orbitflows/orbit/pkg/log"
	"github.com/orbitflows/orbit/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "orbit-cron",
		Usage:                 "Run one scheduled sweep over published workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "orbit.yaml",
				Sources: cli.EnvVars("ORBIT_CONFIG"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			log.Setup(cfg.LogLevel)
			logger := log.WithModule("orbit-cron")

			logger.InfoContext(ctx, "Starting batch sweep")

			persistence := cmd.NewPersistence(ctx, logger, cfg.DatabaseURL)
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			var generator aiagent.Generator
			if cfg.GeminiAPIKey != "" {
				generator = aiagent.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)
			}

			registry := cmd.NewRegistry(logger, generator)
			ledger := cmd.NewLedger(logger, persistence, cfg.RedisAddr)

			eng := engine.New(persistence, registry, ledger, nil, logger, cfg.Engine)
			batch := scheduler.NewBatch(persistence.Workflows(), persistence.Executions(), eng, logger)

			results, err := batch.RunDue(ctx)
			if err != nil {
				return err
			}

			for _, result := range results {
				logger.InfoContext(ctx, "Workflow sweep result",
					"workflow_id", result.WorkflowID,
					"success", result.Success,
					"message", result.Message,
				)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
