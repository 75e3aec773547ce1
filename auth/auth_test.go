package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, key string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestKeyVerifier_Verify(t *testing.T) {
	v, err := NewKeyVerifier(testHash(t, "AI-FY-VIP"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		key     string
		wantErr error
	}{
		{name: "valid login", email: "name@company.com", key: "AI-FY-VIP"},
		{name: "missing email checked first", email: "  ", key: "wrong", wantErr: ErrEmailRequired},
		{name: "wrong key", email: "name@company.com", key: "ai-fy-vip", wantErr: ErrInvalidKey},
		{name: "empty key", email: "name@company.com", key: "", wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), tt.email, tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKeyVerifier_SetHash(t *testing.T) {
	v, err := NewKeyVerifier(testHash(t, "old"))
	require.NoError(t, err)

	require.NoError(t, v.SetHash(testHash(t, "new")))
	assert.ErrorIs(t, v.Verify(context.Background(), "a@b.c", "old"), ErrInvalidKey)
	assert.NoError(t, v.Verify(context.Background(), "a@b.c", "new"))

	assert.Error(t, v.SetHash("not-a-hash"))
	assert.NoError(t, v.Verify(context.Background(), "a@b.c", "new"), "failed SetHash must keep the previous hash")
}

func TestNewKeyVerifier_InvalidHash(t *testing.T) {
	_, err := NewKeyVerifier("")
	assert.Error(t, err)
}

func TestHashKey(t *testing.T) {
	hash, err := HashKey("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	_, err = HashKey("")
	assert.Error(t, err)
}
