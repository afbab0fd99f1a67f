package state

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_NoKey(t *testing.T) {
	// Without the env var, encryption is a pass-through.
	os.Unsetenv(EncryptionKeyEnvVar)

	content := []byte(`{"version": 1, "serial": 0}`)
	encrypted, err := EncryptState(content)
	require.NoError(t, err)
	assert.Equal(t, content, encrypted)

	decrypted, err := DecryptState(content)
	require.NoError(t, err)
	assert.Equal(t, content, decrypted)
}

func TestEncryptDecrypt_WithKey(t *testing.T) {
	os.Setenv(EncryptionKeyEnvVar, "my-super-secret-encryption-key!!")
	defer os.Unsetenv(EncryptionKeyEnvVar)

	content := []byte(`{"version": 1, "serial": 42, "lineage": "abc"}`)

	encrypted, err := EncryptState(content)
	require.NoError(t, err)
	assert.NotEqual(t, content, encrypted)
	assert.True(t, IsEncrypted(encrypted))

	decrypted, err := DecryptState(encrypted)
	require.NoError(t, err)
	assert.Equal(t, content, decrypted)
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted([]byte("# AWSCDK_ENCRYPTED_STATE\nbase64data")))
	assert.False(t, IsEncrypted([]byte(`{"version": 1}`)))
	assert.False(t, IsEncrypted([]byte("")))
}

func TestDecryptState_WrongKey(t *testing.T) {
	os.Setenv(EncryptionKeyEnvVar, "correct-key-for-encryption!!!!!")
	defer os.Unsetenv(EncryptionKeyEnvVar)

	encrypted, err := EncryptState([]byte("test data"))
	require.NoError(t, err)

	os.Setenv(EncryptionKeyEnvVar, "wrong-key-for-decryption!!!!!!!")
	_, err = DecryptState(encrypted)
	assert.Error(t, err)
}

func TestDecryptState_NoKey(t *testing.T) {
	os.Setenv(EncryptionKeyEnvVar, "some-key-for-testing!!!!!!!!!!!!")

	encrypted, err := EncryptState([]byte("test data"))
	require.NoError(t, err)

	os.Unsetenv(EncryptionKeyEnvVar)
	_, err = DecryptState(encrypted)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}
