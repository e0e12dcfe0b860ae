package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type memoryRepo struct {
	users map[string]User
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	user, ok := r.users[email]
	if !ok {
		return User{}, fmt.Errorf("auth: user: %w", httpx.ErrNotFound)
	}
	return user, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id int64) (User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, fmt.Errorf("auth: user: %w", httpx.ErrNotFound)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewService(&memoryRepo{users: map[string]User{
		"admin@example.com": {
			ID:           1,
			Email:        "admin@example.com",
			Name:         "Admin",
			PasswordHash: string(hash),
			Role:         "admin",
			IsActive:     true,
		},
		"gone@example.com": {
			ID:           2,
			Email:        "gone@example.com",
			PasswordHash: string(hash),
			IsActive:     false,
		},
	}})
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "admin@example.com", "wrong")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "gone@example.com", "s3cret")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}
