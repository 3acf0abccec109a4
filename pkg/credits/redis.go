package credits

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "orbit:credits:"

// RedisLedger keeps balances in Redis so concurrent runs by the same user
// decrement atomically across processes. Balances are seeded from the user
// row by the billing collaborator; this ledger only reads and decrements.
type RedisLedger struct {
	client redis.UniversalClient
}

func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (l *RedisLedger) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := l.client.Get(ctx, key(userID)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}

	return balance, nil
}

// Deduct decrements the balance by one. DECR is atomic, so two simultaneous
// runs can never consume the same credit; a decrement that lands below zero
// is rolled back and refused.
func (l *RedisLedger) Deduct(ctx context.Context, userID string) error {
	balance, err := l.client.Decr(ctx, key(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to deduct credit: %w", err)
	}

	if balance < 0 {
		if err := l.client.Incr(ctx, key(userID)).Err(); err != nil {
			return fmt.Errorf("failed to restore credit balance: %w", err)
		}

		return ErrInsufficient
	}

	return nil
}

// Seed sets a user's balance, overwriting any existing value. Used by the
// billing collaborator when credits are purchased or granted.
func (l *RedisLedger) Seed(ctx context.Context, userID string, balance int) error {
	if err := l.client.Set(ctx, key(userID), balance, 0).Err(); err != nil {
		return fmt.Errorf("failed to seed credit balance: %w", err)
	}

	return nil
}
