package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"librarysvc/auth"
)

func Test_HashPassword_VerifiesAndUsesConfiguredCost(t *testing.T) {
	// arrange + act
	hash, err := auth.HashPassword("s3cret-password")

	// assert
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(hash, "s3cret-password"))
	assert.False(t, auth.VerifyPassword(hash, "wrong-password"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, auth.PasswordHashCost, cost)
}

func Test_VerifyPassword_MismatchIsNotAnError(t *testing.T) {
	assert.False(t, auth.VerifyPassword("not even a bcrypt hash", "whatever"))
}

func Test_TokenCodec_IssueAndAuthenticate(t *testing.T) {
	// arrange
	codec := auth.NewTokenCodec("test-secret", time.Hour)

	// act
	token, err := codec.Issue(42)
	require.NoError(t, err)

	userID, err := codec.Authenticate("Bearer " + token)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func Test_TokenCodec_Authenticate_MissingBearerPrefix(t *testing.T) {
	// arrange
	codec := auth.NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue(42)
	require.NoError(t, err)

	// act
	_, err = codec.Authenticate(token)

	// assert
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func Test_TokenCodec_Authenticate_EmptyHeader(t *testing.T) {
	// arrange
	codec := auth.NewTokenCodec("test-secret", time.Hour)

	// act
	_, err := codec.Authenticate("")

	// assert
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func Test_TokenCodec_Verify_WrongSecret(t *testing.T) {
	// arrange
	issuer := auth.NewTokenCodec("test-secret", time.Hour)
	verifier := auth.NewTokenCodec("another-secret", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	// act
	_, err = verifier.Verify(token)

	// assert
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func Test_TokenCodec_Verify_ExpiredToken(t *testing.T) {
	// arrange
	codec := auth.NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Issue(42)
	require.NoError(t, err)

	// act
	_, err = codec.Verify(token)

	// assert
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func Test_TokenCodec_Verify_GarbageToken(t *testing.T) {
	// arrange
	codec := auth.NewTokenCodec("test-secret", time.Hour)

	// act
	_, err := codec.Verify("not.a.token")

	// assert
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
