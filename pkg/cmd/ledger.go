package cmd

import (
	"log/slog"

	"github.com/orbitflows/orbit/pkg/credits"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// NewLedger picks the credit ledger backend. With a Redis address configured
// balances live in Redis, which keeps concurrent deductions by one user
// atomic across processes; otherwise the ledger reads and writes the user
// rows directly.
func NewLedger(logger *slog.Logger, store persistence.Persistence, redisAddr string) credits.Ledger {
	if redisAddr == "" {
		return credits.NewStoreLedger(store.Users())
	}

	logger.Info("Using Redis credit ledger", "addr", redisAddr)

	client := redis.NewClient(&redis.Options{Addr: redisAddr})

	return credits.NewRedisLedger(client)
}
