package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/naturlife/storefront/internal/domain/user"
)

// UsersRepo is an in-process credential store with the same contract as the Postgres one.
// Calls counts every store access so tests can assert a gate refused before touching data.
type UsersRepo struct {
	mu     sync.RWMutex
	items  map[string]user.User
	emails map[string]string

	calls atomic.Int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:  make(map[string]user.User),
		emails: make(map[string]string),
	}
}

func (r *UsersRepo) Calls() int64 {
	return r.calls.Load()
}

func (r *UsersRepo) Create(_ context.Context, in user.NewUser) (user.User, error) {
	r.calls.Add(1)

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        user.NormalizeEmail(in.Email),
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Role:         in.Role,
		Phone:        in.Phone,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}
	r.items[u.ID] = u
	r.emails[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.calls.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.calls.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.calls.Add(1)

	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UsersRepo) UpdateRole(_ context.Context, id string, role user.Role) error {
	r.calls.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.calls.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}
	delete(r.items, id)
	delete(r.emails, u.Email)
	return nil
}
