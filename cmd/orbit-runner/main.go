// Command orbit-runner executes a single workflow from the command line and
// prints its run log.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/orbitflows/orbit/pkg/cmd"
	"github.com/orbitflows/orbit/pkg/config"
	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/handlers/aiagent"
	"github.com/orbitflows/orbit/pkg/log"
	"github.com/orbitflows/orbit/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "orbit-runner",
		Usage:                 "Execute one workflow and print its run log",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "orbit.yaml",
				Sources: cli.EnvVars("ORBIT_CONFIG"),
			},
			&cli.StringFlag{
				Name:     "workflow-id",
				Aliases:  []string{"w"},
				Usage:    "ID of the workflow to run",
				Required: true,
				Sources:  cli.EnvVars("WORKFLOW_ID"),
			},
			&cli.StringFlag{
				Name:     "user-id",
				Aliases:  []string{"u"},
				Usage:    "ID of the workflow owner",
				Required: true,
				Sources:  cli.EnvVars("USER_ID"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			log.Setup(cfg.LogLevel)
			logger := log.WithModule("orbit-runner")

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

			result := eng.Execute(ctx, command.String("workflow-id"), command.String("user-id"), models.TriggerKindManual)
			if !result.Success {
				return fmt.Errorf("run refused: %s", result.Message)
			}

			for _, line := range result.Logs {
				fmt.Println(line)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
