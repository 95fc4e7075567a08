package sessions

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAndValidate(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	session, err := svc.Create("acct-1", "test-agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.Token == "" {
		t.Fatal("session should get a token")
	}

	got, err := svc.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Errorf("AccountID = %q", got.AccountID)
	}

	if _, err := svc.Validate("bogus"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("bogus token error = %v", err)
	}
	if _, err := svc.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token error = %v", err)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	svc, err := NewService("", time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	session, err := svc.Create("acct-1", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Force expiry from inside the map.
	svc.mu.Lock()
	expired := svc.sessions[session.Token]
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	svc.sessions[session.Token] = expired
	svc.mu.Unlock()

	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Validate() error = %v, want ErrSessionExpired", err)
	}
	// The expired session is removed on validation.
	if svc.Count() != 0 {
		t.Errorf("Count() = %d after expiry, want 0", svc.Count())
	}
}

func TestRevoke(t *testing.T) {
	svc, err := NewService("", time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	session, err := svc.Create("acct-1", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Revoke(session.Token); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("revoked token error = %v", err)
	}
	if err := svc.Revoke(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double Revoke() error = %v", err)
	}
}

func TestRevokeAllForAccount(t *testing.T) {
	svc, err := NewService("", time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create("acct-1", "", ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	other, err := svc.Create("acct-2", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if count := svc.RevokeAllForAccount("acct-1"); count != 3 {
		t.Errorf("RevokeAllForAccount() = %d, want 3", count)
	}
	if _, err := svc.Validate(other.Token); err != nil {
		t.Errorf("other account's session should survive: %v", err)
	}
}

func TestRefreshExtendsExpiry(t *testing.T) {
	svc, err := NewService("", time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	session, err := svc.Create("acct-1", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	refreshed, err := svc.Refresh(session.Token)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.ExpiresAt.Before(session.ExpiresAt) {
		t.Error("refresh should not shorten the session")
	}
}

func TestSessionsPersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	session, err := svc.Create("acct-1", "agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	reloaded, err := NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("reload NewService() error = %v", err)
	}
	got, err := reloaded.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate() after reload error = %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Errorf("AccountID = %q", got.AccountID)
	}
}

func TestCleanupDropsExpired(t *testing.T) {
	svc, err := NewService("", time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	session, err := svc.Create("acct-1", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc.mu.Lock()
	expired := svc.sessions[session.Token]
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	svc.sessions[session.Token] = expired
	svc.mu.Unlock()

	if count := svc.Cleanup(); count != 1 {
		t.Errorf("Cleanup() = %d, want 1", count)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
}
