package auth

import (
	"errors"
	"strings"

	"github.com/juank27/alegra-api/internal/storage"
)

type TokenStore struct {
	db     *storage.DB
	cipher *Cipher
}

func NewTokenStore(db *storage.DB, cipher *Cipher) *TokenStore {
	return &TokenStore{db: db, cipher: cipher}
}

// SaveToken encrypts and persists a token for email.
func (s *TokenStore) SaveToken(email, token string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	encrypted, err := s.cipher.EncryptToken(token)
	if err != nil {
		return err
	}
	return s.db.UpsertToken(email, encrypted)
}

// LoadTokens returns the decrypted email -> token mapping. Entries
// that no longer decrypt (rotated secret) are skipped.
func (s *TokenStore) LoadTokens() (map[string]string, error) {
	stored, err := s.db.ListTokens()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(stored))
	for email, encrypted := range stored {
		token, err := s.cipher.DecryptToken(encrypted)
		if err != nil {
			continue
		}
		out[email] = token
	}
	return out, nil
}

// FindEmail returns the email the presented token belongs to, or ""
// when no stored token matches.
func (s *TokenStore) FindEmail(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	tokens, err := s.LoadTokens()
	if err != nil {
		return "", err
	}
	for email, stored := range tokens {
		if stored == token {
			return email, nil
		}
	}
	return "", nil
}

// EnsureAdmin upserts the admin credential so the store always holds
// at least one usable token. Safe to call on every start.
func (s *TokenStore) EnsureAdmin(email, token string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(token) == "" {
		return errors.New("admin email and token are required")
	}
	return s.SaveToken(email, token)
}
