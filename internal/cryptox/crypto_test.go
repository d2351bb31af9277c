package cryptox

import (
	"testing"

	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	Title    string `json:"title"`
	Password string `json:"password"`
}

func TestEncryptDecryptEntry_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	in := testEntry{Title: "bank", Password: "correct-horse"}

	ciphertext, nonce, err := EncryptEntry(in, key)
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.Len(t, nonce, 12)

	var out testEntry
	require.NoError(t, DecryptEntry(ciphertext, nonce, key, &out))
	require.Equal(t, in, out)
}

func TestDecryptEntry_WrongKeyFails(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	ciphertext, nonce, err := EncryptEntry(testEntry{Title: "x"}, key)
	require.NoError(t, err)

	var out testEntry
	err = DecryptEntry(ciphertext, nonce, common.GenerateRandByteArray(32), &out)
	require.Error(t, err)
}

func TestDeriveCacheKey_DeterministicPerSalt(t *testing.T) {
	password := []byte("master-secret")
	salt := common.GenerateRandByteArray(32)

	k1 := DeriveCacheKey(password, salt)
	k2 := DeriveCacheKey(password, salt)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)

	k3 := DeriveCacheKey(password, common.GenerateRandByteArray(32))
	require.NotEqual(t, k1, k3)
}

func TestEncryptEntry_BadKeyLength(t *testing.T) {
	_, _, err := EncryptEntry(testEntry{}, []byte("short"))
	require.Error(t, err)
}
