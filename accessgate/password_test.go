package accessgate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
)

func Test_HashPassword_ProducesComparableHash(t *testing.T) {
	// act
	hash, err := accessgate.HashPassword("123456")

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, []byte("123456"), hash)
	assert.NoError(t, accessgate.ComparePassword(hash, "123456"))

	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, accessgate.PasswordCost, cost)
}

func Test_HashPassword_RejectsEmptyPassword(t *testing.T) {
	_, err := accessgate.HashPassword("")

	assert.ErrorIs(t, err, accessgate.ErrEmptyPassword)
}

func Test_ComparePassword_WrongPassword(t *testing.T) {
	// arrange
	hash, err := accessgate.HashPassword("123456")
	require.NoError(t, err)

	// act
	err = accessgate.ComparePassword(hash, "654321")

	// assert
	assert.ErrorIs(t, err, accessgate.ErrPasswordMismatch)
}

func Test_ComparePassword_MalformedHash(t *testing.T) {
	err := accessgate.ComparePassword([]byte("not-a-hash"), "123456")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, accessgate.ErrPasswordMismatch)
}
