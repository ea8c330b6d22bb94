package auth

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestAuthority() *Authority {
	return NewAuthority("test-secret", "test-salt", time.Hour)
}

func TestPassword_RoundTrip(t *testing.T) {
	a := newTestAuthority()
	hash, err := a.HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(hash, "hunter2") {
		t.Fatal("hash contains plaintext")
	}
	if err := a.VerifyPassword("hunter2", hash); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := a.VerifyPassword("wrong", hash); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPassword_PepperMatters(t *testing.T) {
	hash, err := NewAuthority("s", "pepper-a", time.Hour).HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if err := NewAuthority("s", "pepper-b", time.Hour).VerifyPassword("pw", hash); err == nil {
		t.Fatal("a different pepper must not verify")
	}
}

func TestPassword_LongPassword(t *testing.T) {
	a := newTestAuthority()
	long := strings.Repeat("x", 200)
	hash, err := a.HashPassword(long)
	if err != nil {
		t.Fatalf("long password should hash: %v", err)
	}
	if err := a.VerifyPassword(long+"y", hash); err == nil {
		t.Fatal("password differing past 72 bytes must not verify")
	}
}

func TestToken_RoundTrip(t *testing.T) {
	a := newTestAuthority()
	tok, err := a.IssueToken("user-123")
	if err != nil {
		t.Fatal(err)
	}
	uid, err := a.ParseToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if uid != "user-123" {
		t.Fatalf("expected user-123, got %s", uid)
	}
}

func TestToken_WrongSecret(t *testing.T) {
	tok, _ := newTestAuthority().IssueToken("u")
	other := NewAuthority("other-secret", "test-salt", time.Hour)
	if _, err := other.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestToken_Expired(t *testing.T) {
	a := newTestAuthority()
	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := a.IssueToken("u")
	if err != nil {
		t.Fatal(err)
	}
	a.now = time.Now
	if _, err := a.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestToken_Garbage(t *testing.T) {
	if _, err := newTestAuthority().ParseToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(r)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
