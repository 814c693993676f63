package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserService(t *testing.T) (*UserService, *memStore, *mockTokens) {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	store := newMemStore()
	tokens := &mockTokens{}
	return NewUserService(store, hasher, tokens, testLogger()), store, tokens
}

func TestRegister_Success(t *testing.T) {
	svc, store, _ := setupUserService(t)

	user, err := svc.Register(context.Background(), "  Ada ", " ada@example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	stored, err := store.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := setupUserService(t)

	cases := []struct{ name, email, password string }{
		{"", "a@x.com", "pw"},
		{"A", "   ", "pw"},
		{"A", "a@x.com", ""},
		{"A", "a@x.com", "   "},
	}
	for _, c := range cases {
		_, err := svc.Register(context.Background(), c.name, c.email, c.password)
		assert.ErrorIs(t, err, ErrValidation, "input %+v", c)
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, store, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "a@x.com", strings.Repeat("p", auth.MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = store.GetUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.Register(ctx, "A", "a@x.com", strings.Repeat("p", auth.MaxPasswordLength))
	assert.NoError(t, err)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ada@example.com", "pw2")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin_Success(t *testing.T) {
	svc, _, tokens := setupUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "token-for-user", session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.Equal(t, registered.ID, session.User.ID)
	assert.Empty(t, session.User.PasswordHash)
	assert.Equal(t, []int64{registered.ID}, tokens.issued)
}

func TestLogin_WrongPasswordLooksLikeUnknownEmail(t *testing.T) {
	svc, _, tokens := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)

	_, errWrong := svc.Login(ctx, "ada@example.com", "nope")
	_, errUnknown := svc.Login(ctx, "ghost@example.com", "nope")

	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Empty(t, tokens.issued)
}

func TestLogin_EmptyFields(t *testing.T) {
	svc, _, _ := setupUserService(t)

	_, err := svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogin_StoreErrorIsNotInvalidCredentials(t *testing.T) {
	svc, store, _ := setupUserService(t)
	store.err = errors.New("connection refused")

	_, err := svc.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, tokens := setupUserService(t)

	err := svc.Logout(context.Background(), &auth.Identity{UserID: 1, TokenID: "jti-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jti-1"}, tokens.revoked)
}

func TestLogout_RevocationFailure(t *testing.T) {
	svc, _, tokens := setupUserService(t)
	tokens.err = errors.New("redis down")

	err := svc.Logout(context.Background(), &auth.Identity{UserID: 1, TokenID: "jti-1"})
	assert.Error(t, err)
}

func TestDeleteAccount(t *testing.T) {
	svc, store, tokens := setupUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, &auth.Identity{UserID: user.ID}))
	assert.Equal(t, []int64{user.ID}, tokens.revokedUsers)

	_, err = store.GetUserByID(ctx, user.ID)
	assert.Error(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, &auth.Identity{UserID: user.ID}), ErrNotFound)
}
