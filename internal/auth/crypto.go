package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Fixed salt keeps stored tokens decryptable across restarts; the
// secret key itself is the only input that must stay private.
var kdfSalt = []byte("alegra-api.tokens.v1")

type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(secretKey string) (*Cipher, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("missing SECRET_KEY")
	}

	key, err := scrypt.Key([]byte(secretKey), kdfSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) EncryptToken(token string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(token), nil)
	return hex.EncodeToString(sealed), nil
}

func (c *Cipher) DecryptToken(encrypted string) (string, error) {
	blob, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	if len(blob) < c.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := blob[:c.aead.NonceSize()], blob[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// GenerateToken returns a fresh random API token.
func GenerateToken() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
