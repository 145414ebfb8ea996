package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("correct horse")
	require.NoError(t, err)
	second, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("correct horse", first))
	assert.True(t, h.Verify("correct horse", second))
}

func TestPasswordHasher_Verify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("pw1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hashed   string
		want     bool
	}{
		{"match", "pw1", hash, true},
		{"wrong password", "pw2", hash, false},
		{"empty hash", "pw1", "", false},
		{"malformed hash", "pw1", "not-a-bcrypt-hash", false},
		{"truncated hash", "pw1", hash[:20], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, h.Verify(tt.password, tt.hashed))
			})
		})
	}
}

func TestPasswordHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
