package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cspwatch/internal/domain"
)

type memCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.Token
	hashes map[string]int64
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{hashes: make(map[string]int64)}
}

func (m *memCredentialStore) Insert(_ context.Context, prefix, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append(m.rows, domain.Token{ID: m.nextID, Prefix: prefix})
	m.hashes[hash] = m.nextID
	return nil
}

func (m *memCredentialStore) ExistsByHash(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[hash]
	return ok, nil
}

func (m *memCredentialStore) List(_ context.Context) ([]domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Token, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memCredentialStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	for hash, rowID := range m.hashes {
		if rowID == id {
			delete(m.hashes, hash)
		}
	}
	return nil
}

const testSecret = "test-master-secret"

func TestIssueRejectsWrongCredential(t *testing.T) {
	svc := NewTokenService(testSecret, newMemCredentialStore())
	if _, err := svc.Issue(context.Background(), "not-the-secret"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestIssueTrimsSuppliedCredential(t *testing.T) {
	svc := NewTokenService(testSecret, newMemCredentialStore())
	if _, err := svc.Issue(context.Background(), "  "+testSecret+"\n"); err != nil {
		t.Fatalf("whitespace-wrapped secret rejected: %v", err)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	store := newMemCredentialStore()
	svc := NewTokenService(testSecret, store)

	raw, err := svc.Issue(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// 30 random bytes encode to a fixed-length base64 string.
	if len(raw) != 40 {
		t.Fatalf("raw token length %d, want 40", len(raw))
	}
	if err := svc.Verify(context.Background(), raw); err != nil {
		t.Fatalf("verify issued token: %v", err)
	}

	mutated := []byte(raw)
	if mutated[0] == 'A' {
		mutated[0] = 'B'
	} else {
		mutated[0] = 'A'
	}
	if err := svc.Verify(context.Background(), string(mutated)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("mutated token: got %v, want ErrUnauthorized", err)
	}

	tokens, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Prefix != raw[:5] {
		t.Fatalf("listed tokens %v, want one entry with prefix %q", tokens, raw[:5])
	}
}

func TestRawTokenIsNeverStored(t *testing.T) {
	store := newMemCredentialStore()
	svc := NewTokenService(testSecret, store)
	raw, err := svc.Issue(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	for hash := range store.hashes {
		if hash == raw {
			t.Fatal("raw token persisted as its own hash")
		}
	}
	if svc.LookupHash(raw) != svc.LookupHash(raw) {
		t.Fatal("lookup hash is not deterministic")
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newMemCredentialStore()
	svc := NewTokenService(testSecret, store)

	first, err := svc.Issue(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := svc.Issue(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	remaining, err := svc.Revoke(context.Background(), 1)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Prefix != second[:5] {
		t.Fatalf("remaining %v, want only the second token", remaining)
	}

	again, err := svc.Revoke(context.Background(), 1)
	if err != nil {
		t.Fatalf("revoke again: %v", err)
	}
	if len(again) != 1 || again[0].Prefix != remaining[0].Prefix {
		t.Fatalf("second revoke changed the list: %v", again)
	}

	if err := svc.Verify(context.Background(), first); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("revoked token still verifies: %v", err)
	}
	if err := svc.Verify(context.Background(), second); err != nil {
		t.Fatalf("surviving token stopped verifying: %v", err)
	}
}
