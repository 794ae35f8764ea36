package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_EncryptDecrypt(t *testing.T) {
	cipher, err := NewCipher("segredo-de-teste")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("EAABsbCS1iHgBA-token-opaco")
	require.NoError(t, err)
	assert.NotEqual(t, "EAABsbCS1iHgBA-token-opaco", encrypted)

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "EAABsbCS1iHgBA-token-opaco", decrypted)
}

func TestCipher_DecryptComOutraChave(t *testing.T) {
	cipherA, err := NewCipher("chave-a")
	require.NoError(t, err)

	cipherB, err := NewCipher("chave-b")
	require.NoError(t, err)

	encrypted, err := cipherA.Encrypt("token")
	require.NoError(t, err)

	_, err = cipherB.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestNewCipher_SecretVazio(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
