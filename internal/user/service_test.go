package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
)

type memRepository struct {
	mu        sync.Mutex
	byID      map[string]*User
	failLogin bool
}

func newMemRepository() *memRepository {
	return &memRepository{byID: map[string]*User{}}
}

func (r *memRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrEmailAlreadyUsed
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(r.byID)+1)
	u.CreatedAt = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memRepository) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLogin {
		return errors.New("db down")
	}
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

// plainHasher keeps tests fast; bcrypt is covered by the auth package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, plainHasher{}, zerolog.Nop())
}

func TestService_Register(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: " Asha ", Email: " Asha@Example.COM ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "hashed:"))

	owner, err := svc.Register(ctx, RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "password1", Role: auth.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleOwner, owner.Role)
}

func TestService_Register_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"empty email", RegisterRequest{Name: "a", Email: "  ", Password: "password1"}, ErrEmailRequired},
		{"empty name", RegisterRequest{Name: " ", Email: "a@b.c", Password: "password1"}, ErrNameRequired},
		{"short password", RegisterRequest{Name: "a", Email: "a@b.c", Password: "short"}, ErrPasswordTooShort},
		{"admin role", RegisterRequest{Name: "a", Email: "a@b.c", Password: "password1", Role: auth.RoleAdmin}, ErrRoleNotAllowed},
		{"unknown role", RegisterRequest{Name: "a", Email: "a@b.c", Password: "password1", Role: "root"}, ErrRoleNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemRepository())
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "a", Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "b", Email: "DUP@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestService_Login(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "A@example.com", "password1")
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_LastLoginFailureIsNotFatal(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	repo.failLogin = true
	u, err := svc.Login(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
}
