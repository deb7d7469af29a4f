package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram-v2/backend/internal/testhelpers"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     "Cook@Example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "secret123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, "cook", user.Username)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)

	// Login is case-insensitive on email.
	loginToken, err := svc.Login(ctx, "COOK@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)

	_, err = svc.Login(ctx, "cook@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "email already registered", err.Error())

	req := registerRequest()
	req.Email = "other@example.com"
	_, _, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "username already taken", err.Error())
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	err = svc.SetPassword(ctx, user.ID, "wrongpass", "newsecret1")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "current password is incorrect", err.Error())

	require.NoError(t, svc.SetPassword(ctx, user.ID, "secret123", "newsecret1"))

	_, err = svc.Login(ctx, "cook@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "cook@example.com", "newsecret1")
	assert.NoError(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	// A token signed with a different secret must not validate.
	other := NewAuthService(db, "other-secret")
	_, token, err := other.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
