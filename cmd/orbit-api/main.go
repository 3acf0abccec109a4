package main

import (
	"context"
	"os"

	"github.com/orbitflows/orbit/pkg/cmd"
	"github.com/orbitflows/orbit/pkg/config"
	"github.com/orbitflows/orbit/pkg/log"
	"github.com/orbitflows/orbit/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "orbit-api",
		Usage:                 "Run the Orbit workflow API server",
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
			logger := log.WithModule("orbit-api")

			logger.InfoContext(ctx, "Initializing Orbit API")

			if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
				if _, err := otelhelper.NewTracer(ctx, "orbit-api"); err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracing", "error", err)
				}
			}

			persistence := cmd.NewPersistence(ctx, logger, cfg.DatabaseURL)
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus("gochannel", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, cfg, persistence, eventBus)

			if err := api.SubscribeActivity(ctx); err != nil {
				return err
			}

			return api.Start(cfg.Port)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
