// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/orbitflows/orbit/pkg/handlers/aiagent"
	"github.com/orbitflows/orbit/pkg/handlers/drive"
	"github.com/orbitflows/orbit/pkg/handlers/gmail"
	"github.com/orbitflows/orbit/pkg/handlers/notion"
	"github.com/orbitflows/orbit/pkg/handlers/slack"
	"github.com/orbitflows/orbit/pkg/handlers/webscraper"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/registry"
)

// NewRegistry builds the handler registry with every native capability,
// including the legacy node type aliases older saved graphs still carry.
func NewRegistry(logger *slog.Logger, generator aiagent.Generator) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(webscraper.NewFactory())
	reg.Register(drive.NewFactory())
	reg.Register(notion.NewFactory())
	reg.Register(slack.NewFactory())
	reg.Register(gmail.NewFactory())

	if generator != nil {
		reg.Register(aiagent.NewFactory(generator))
	}

	mustAlias(reg, models.NodeTypeBrowser, models.NodeTypeWebScraper)
	mustAlias(reg, models.NodeTypeSendEmail, models.NodeTypeEmail)

	return reg
}

func mustAlias(reg *registry.Registry, alias, target string) {
	if err := reg.RegisterAlias(alias, target); err != nil {
		panic(err)
	}
}
