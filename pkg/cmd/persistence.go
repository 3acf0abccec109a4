package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/orbitflows/orbit/pkg/persistence/file"
	"github.com/orbitflows/orbit/pkg/persistence/postgresql"
)

// NewPersistence selects the storage backend from the database URL scheme.
// postgres:// and postgresql:// get the SQL store; anything else is treated
// as a directory path for the JSON file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	scheme, _, _ := strings.Cut(databaseURL, "://")

	switch scheme {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return store
	default:
		return file.NewPersistence(databaseURL)
	}
}
