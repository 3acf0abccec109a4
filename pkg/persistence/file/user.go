package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// UserRepository stores each user as users/<id>.json. A process-local mutex
// serializes credit adjustments; multi-process deployments use the Postgres
// or Redis-backed ledgers instead.
type UserRepository struct {
	root  string
	mutex sync.Mutex
}

func NewUserRepository(root string) *UserRepository {
	return &UserRepository{root: root}
}

func (r *UserRepository) dir() string {
	return filepath.Join(r.root, "users")
}

func (r *UserRepository) ByID(_ context.Context, id string) (*models.User, error) {
	return r.read(id)
}

func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.write(user)
}

// AdjustCredits applies delta under the repository lock and returns the new
// balance. A result below zero is refused and leaves the balance unchanged.
func (r *UserRepository) AdjustCredits(_ context.Context, id string, delta int) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, err := r.read(id)
	if err != nil {
		return 0, err
	}

	next := user.Credits + delta
	if next < 0 {
		return user.Credits, persistence.NewStoreError("AdjustCredits", "user", id, persistence.ErrInsufficientCredits)
	}

	user.Credits = next
	user.UpdatedAt = time.Now().UTC()

	if err := r.write(user); err != nil {
		return 0, err
	}

	return next, nil
}

func (r *UserRepository) read(id string) (*models.User, error) {
	data, err := os.ReadFile(filepath.Join(r.dir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewStoreError("ByID", "user", id, persistence.ErrUserNotFound)
		}

		return nil, persistence.NewStoreError("ByID", "user", id, err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, persistence.NewStoreError("ByID", "user", id, err)
	}

	return &user, nil
}

func (r *UserRepository) write(user *models.User) error {
	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return persistence.NewStoreError("Save", "user", user.ID, err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", "user", user.ID, err)
	}

	path := filepath.Join(r.dir(), user.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewStoreError("Save", "user", user.ID, err)
	}

	return nil
}
