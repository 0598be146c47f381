package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHasher_HashAndCheck(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("secretpass")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secretpass", hash)

	assert.True(t, hasher.Check("secretpass", hash))
	assert.False(t, hasher.Check("wrongpass", hash))
	assert.False(t, hasher.Check("", hash))
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("secretpass")
	assert.NoError(t, err)
	second, err := hasher.Hash("secretpass")
	assert.NoError(t, err)

	// Same plaintext, different salts.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("secretpass", first))
	assert.True(t, hasher.Check("secretpass", second))
}
