package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
)

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, tok, err := f.auth.SignUp(ctx, SignUpInput{
		Name:                 "New Reader",
		Email:                "  Reader@Example.COM ",
		Password:             "password",
		PasswordConfirmation: "password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.Equal(t, "reader@example.com", u.Email)

	// the token works immediately
	resolved, err := f.auth.ResolveToken(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := SignUpInput{
		Name:                 "First",
		Email:                "dup@example.com",
		Password:             "password",
		PasswordConfirmation: "password",
	}
	_, _, err := f.auth.SignUp(ctx, in)
	require.NoError(t, err)

	in.Name = "Second"
	in.Email = "DUP@example.com" // normalization collides too
	_, _, err = f.auth.SignUp(ctx, in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.As(err).Messages(), "Email address has already been taken")
}

func TestSignUpValidation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.auth.SignUp(context.Background(), SignUpInput{
		Name:                 "",
		Email:                "",
		Password:             "password",
		PasswordConfirmation: "different",
	})
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	msgs := apperr.As(err).Messages()
	assert.Contains(t, msgs, "Name can't be blank")
	assert.Contains(t, msgs, "Email address can't be blank")
	assert.Contains(t, msgs, "Password confirmation doesn't match Password")
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "Reader", "reader@example.com", domain.RoleMember)

	u, err := f.auth.Authenticate(ctx, "Reader@Example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", u.Email)

	_, err = f.auth.Authenticate(ctx, "reader@example.com", "wrong")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = f.auth.Authenticate(ctx, "nobody@example.com", "password")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestTokenRotationAndRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "Reader", "reader@example.com", domain.RoleMember)

	first, err := f.auth.IssueToken(ctx, u)
	require.NoError(t, err)
	second, err := f.auth.IssueToken(ctx, u)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// the old token stopped working the moment the new one landed
	got, err := f.auth.ResolveToken(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = f.auth.ResolveToken(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, f.auth.RevokeToken(ctx, u))
	got, err = f.auth.ResolveToken(ctx, second)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveTokenEmpty(t *testing.T) {
	f := newFixture(t)
	got, err := f.auth.ResolveToken(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}
