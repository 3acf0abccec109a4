// Package credits implements the per-account credit quota consumed by
// workflow runs.
package credits

import (
	"context"
	"errors"

	"github.com/orbitflows/orbit/pkg/persistence"
)

// ErrInsufficient indicates the balance cannot cover a run.
var ErrInsufficient = errors.New("not enough credits")

// Ledger gates and consumes run credits. Deduct removes exactly one credit
// and is called only on the path that also persists the run log.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Deduct(ctx context.Context, userID string) error
}

// StoreLedger keeps balances on the user row in the persistence store.
type StoreLedger struct {
	users persistence.UserRepository
}

func NewStoreLedger(users persistence.UserRepository) *StoreLedger {
	return &StoreLedger{users: users}
}

func (l *StoreLedger) Balance(ctx context.Context, userID string) (int, error) {
	user, err := l.users.ByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	return user.Credits, nil
}

func (l *StoreLedger) Deduct(ctx context.Context, userID string) error {
	_, err := l.users.AdjustCredits(ctx, userID, -1)
	if err != nil {
		if errors.Is(err, persistence.ErrInsufficientCredits) {
			return ErrInsufficient
		}

		return err
	}

	return nil
}
