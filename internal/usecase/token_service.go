package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"cspwatch/internal/domain"
)

// CredentialStore is the row-store port backing issued tokens.
type CredentialStore interface {
	Insert(ctx context.Context, prefix, hash string) error
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	List(ctx context.Context) ([]domain.Token, error)
	Delete(ctx context.Context, id int64) error
}

const (
	rawTokenBytes = 30
	prefixLen     = 5
)

// TokenService issues and verifies bearer tokens. A raw token is
// returned to the caller exactly once; only an HMAC-SHA512 of it, keyed
// by the deployment secret, is persisted. Because the hash is a
// deterministic function of (secret, token) it doubles as the lookup
// key, making verification a single indexed read with nothing to
// decrypt.
type TokenService struct {
	secret string
	store  CredentialStore
}

func NewTokenService(secret string, store CredentialStore) *TokenService {
	return &TokenService{secret: strings.TrimSpace(secret), store: store}
}

// LookupHash derives the store key for a raw token.
func (s *TokenService) LookupHash(raw string) string {
	mac := hmac.New(sha512.New, []byte(s.secret))
	mac.Write([]byte(raw))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Issue mints a new token when supplied, trimmed of surrounding
// whitespace, equals the deployment secret.
func (s *TokenService) Issue(ctx context.Context, supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.secret)) != 1 {
		return "", domain.ErrUnauthorized
	}
	var buf [rawTokenBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := base64.StdEncoding.EncodeToString(buf[:])
	if err := s.store.Insert(ctx, raw[:prefixLen], s.LookupHash(raw)); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	return raw, nil
}

// Verify reports whether presented maps to a stored credential. A
// malformed token is indistinguishable from a revoked or never-issued
// one.
func (s *TokenService) Verify(ctx context.Context, presented string) error {
	ok, err := s.store.ExistsByHash(ctx, s.LookupHash(presented))
	if err != nil {
		return fmt.Errorf("look up token: %w", err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *TokenService) List(ctx context.Context) ([]domain.Token, error) {
	return s.store.List(ctx)
}

// Revoke deletes id if present and returns the remaining tokens.
// Deleting an unknown id is a no-op, not an error.
func (s *TokenService) Revoke(ctx context.Context, id int64) ([]domain.Token, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete token: %w", err)
	}
	return s.store.List(ctx)
}
