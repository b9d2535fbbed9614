package services

import (
	"context"
	"testing"

	"auctionhouse/config"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(store *fakeStore) *AuthService {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 60}
	return NewAuthService(store.Users(), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:       "Alice@Example.com",
		Username:    "alice",
		Password:    "s3cret-password",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Alice", res.User.DisplayName)

	// Email login is case-insensitive; username login works too.
	byEmail, err := svc.Login(context.Background(), LoginInput{Identity: "alice@example.com", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	byUsername, err := svc.Login(context.Background(), LoginInput{Identity: "alice", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byUsername.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Username: "a", Password: "short", DisplayName: "A",
	})
	assert.ErrorIs(t, err, auction_errors.ErrInvalidInput)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "a", Password: "long-enough-pass", DisplayName: "A",
	})
	assert.ErrorIs(t, err, auction_errors.ErrInvalidInput)
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	in := RegisterInput{Email: "a@b.com", Username: "alice", Password: "s3cret-password", DisplayName: "Alice"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, auction_errors.ErrAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Username: "alice", Password: "s3cret-password", DisplayName: "Alice",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Identity: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, auction_errors.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Identity: "nobody", Password: "s3cret-password"})
	assert.ErrorIs(t, err, auction_errors.ErrUnauthorized)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Username: "alice", Password: "s3cret-password", DisplayName: "Alice",
	})
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = svc.ParseAccessToken("")
	assert.ErrorIs(t, err, auction_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, auction_errors.ErrUnauthorized)

	// Tokens signed with another secret are rejected.
	other := NewAuthService(store.Users(), &config.Config{JWTSecret: "other-secret", JWTExpiryMin: 60})
	_, err = other.ParseAccessToken(res.AccessToken)
	assert.ErrorIs(t, err, auction_errors.ErrUnauthorized)
}

func TestUserContextRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithUserContext(context.Background(), id)

	got, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}
