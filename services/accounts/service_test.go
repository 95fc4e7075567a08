package accounts

import (
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	account, err := svc.Register("alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if account.ID == "" {
		t.Error("account should get an ID")
	}
	if account.PasswordHash == "secret123" {
		t.Error("password must be hashed, not stored raw")
	}

	got, err := svc.Authenticate("alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("authenticated account = %q, want %q", got.ID, account.ID)
	}

	// Username matching is case-insensitive.
	if _, err := svc.Authenticate("ALICE", "secret123"); err != nil {
		t.Errorf("case-insensitive Authenticate() error = %v", err)
	}

	if _, err := svc.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if _, err := svc.Register("", "", "secret123"); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("blank username error = %v", err)
	}
	if _, err := svc.Register("bob", "", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("blank password error = %v", err)
	}
	if _, err := svc.Register("bob", "", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password error = %v", err)
	}

	if _, err := svc.Register("bob", "", "secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register("BOB", "", "secret123"); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate username error = %v, want ErrUsernameExists", err)
	}
}

func TestAccountsPersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	account, err := svc.Register("carol", "carol@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	reloaded, err := NewService(dir)
	if err != nil {
		t.Fatalf("reload NewService() error = %v", err)
	}
	got, ok := reloaded.Get(account.ID)
	if !ok {
		t.Fatal("account should survive a restart")
	}
	if got.Email != "carol@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if _, err := reloaded.Authenticate("carol", "secret123"); err != nil {
		t.Errorf("Authenticate() after reload error = %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	account, err := svc.Register("dave", "", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.UpdatePassword(account.ID, "tiny"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short new password error = %v", err)
	}
	if err := svc.UpdatePassword("nope", "newsecret"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account error = %v", err)
	}

	if err := svc.UpdatePassword(account.ID, "newsecret"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if _, err := svc.Authenticate("dave", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password should no longer work")
	}
	if _, err := svc.Authenticate("dave", "newsecret"); err != nil {
		t.Errorf("new password Authenticate() error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	account, err := svc.Register("erin", "", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Delete(account.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if svc.Exists(account.ID) {
		t.Error("deleted account should not exist")
	}
	if err := svc.Delete(account.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("double Delete() error = %v", err)
	}
}
