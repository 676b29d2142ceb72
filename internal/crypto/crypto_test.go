package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := ParseKey(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return key
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey(strings.Repeat("00", 32))
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = ParseKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseKey(strings.Repeat("00", 16))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseKey(strings.Repeat("zz", 32))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	plaintexts := []string{
		"",
		"a",
		"Secr3t!",
		"пароль с юникодом 🙂",
		strings.Repeat("long-", 200),
	}
	for _, want := range plaintexts {
		p, err := Encrypt(want, key)
		require.NoError(t, err)

		got, err := Decrypt(p, key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEncryptFreshIV(t *testing.T) {
	key := testKey(t)

	p1, err := Encrypt("same plaintext", key)
	require.NoError(t, err)
	p2, err := Encrypt("same plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, p1.IV, p2.IV)
	assert.NotEqual(t, p1.Content, p2.Content)
}

func TestDecryptTamperedContent(t *testing.T) {
	key := testKey(t)

	p, err := Encrypt("top secret", key)
	require.NoError(t, err)

	content, err := hex.DecodeString(p.Content)
	require.NoError(t, err)
	content[0] ^= 0x01
	p.Content = hex.EncodeToString(content)

	out, err := Decrypt(p, key)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Empty(t, out)
}

func TestDecryptTamperedTag(t *testing.T) {
	key := testKey(t)

	p, err := Encrypt("top secret", key)
	require.NoError(t, err)

	tag, err := hex.DecodeString(p.Tag)
	require.NoError(t, err)
	tag[len(tag)-1] ^= 0x80
	p.Tag = hex.EncodeToString(tag)

	out, err := Decrypt(p, key)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Empty(t, out)
}

func TestDecryptWrongKey(t *testing.T) {
	key := testKey(t)
	other, err := ParseKey(strings.Repeat("cd", 32))
	require.NoError(t, err)

	p, err := Encrypt("top secret", key)
	require.NoError(t, err)

	_, err = Decrypt(p, other)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestDecryptMalformedHex(t *testing.T) {
	key := testKey(t)

	p, err := Encrypt("top secret", key)
	require.NoError(t, err)
	p.IV = "not-hex"

	_, err = Decrypt(p, key)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestEncryptRejectsShortKey(t *testing.T) {
	_, err := Encrypt("x", []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt(Payload{}, []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
