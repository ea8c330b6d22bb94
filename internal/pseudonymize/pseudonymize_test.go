package pseudonymize

import (
	"strings"
	"testing"
)

func TestIdentifier_Stable(t *testing.T) {
	p := New("salt")
	a := p.Identifier("jane@example.com")
	b := p.Identifier("jane@example.com")
	if a != b {
		t.Fatalf("expected stable pseudonym, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "USER_") || len(a) != len("USER_")+10 {
		t.Fatalf("unexpected pseudonym shape: %q", a)
	}
}

func TestIdentifier_SaltMatters(t *testing.T) {
	if New("a").Identifier("x") == New("b").Identifier("x") {
		t.Fatal("different salts should yield different pseudonyms")
	}
}

func TestIdentifier_Empty(t *testing.T) {
	if got := New("salt").Identifier(""); got != "" {
		t.Fatalf("expected empty pseudonym, got %q", got)
	}
}

func TestText_RedactsPII(t *testing.T) {
	p := New("salt")

	tests := []struct {
		name  string
		input string
		raw   string
	}{
		{"email", "contact jane.doe@example.com today", "jane.doe@example.com"},
		{"SSN", "SSN 123-45-6789 on file", "123-45-6789"},
		{"Visa", "card 4111-1111-1111-1111", "4111-1111-1111-1111"},
		{"US phone", "call 555-123-4567", "555-123-4567"},
		{"IBAN", "iban GB29NWBK60161331926819", "GB29NWBK60161331926819"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Text(tt.input)
			if strings.Contains(got, tt.raw) {
				t.Fatalf("raw value survived redaction: %q", got)
			}
			if !strings.Contains(got, "USER_") {
				t.Fatalf("expected a pseudonym in %q", got)
			}
		})
	}
}

func TestText_LeavesCleanTextAlone(t *testing.T) {
	in := `{"query":"Jane Doe","limit":10}`
	if got := New("salt").Text(in); got != in {
		t.Fatalf("clean text was modified: %q", got)
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds("mail a@b.io and 123-45-6789")
	if len(kinds) != 2 || kinds[0] != "ssn" || kinds[1] != "email" {
		t.Fatalf("Kinds = %#v", kinds)
	}
}
