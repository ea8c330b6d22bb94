// Package pseudonymize replaces personal identifiers with stable, salted tokens
// so that audit records and model prompts never carry raw PII.
package pseudonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Pre-compiled PII patterns, most specific first.
var piiPatterns = []struct {
	re   *regexp.Regexp
	kind string
}{
	// SSN: 123-45-6789 or 123 45 6789
	{regexp.MustCompile(`\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`), "ssn"},

	// Card numbers: Visa, Mastercard, Amex, Discover
	{regexp.MustCompile(`\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "card"},
	{regexp.MustCompile(`\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "card"},
	{regexp.MustCompile(`\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`), "card"},
	{regexp.MustCompile(`\b6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "card"},

	{regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`), "email"},

	{regexp.MustCompile(`\b[A-Z]{2}\d{2}[-\s]?[A-Z0-9]{4}[-\s]?(?:[A-Z0-9]{4}[-\s]?){1,7}[A-Z0-9]{1,4}\b`), "iban"},

	// International, then US phone formats
	{regexp.MustCompile(`\+\d{1,3}[-\s]?\d{1,4}[-\s]?\d{3,4}[-\s]?\d{3,4}\b`), "phone"},
	{regexp.MustCompile(`\(?\b\d{3}\)?[-\s.]?\d{3}[-\s.]?\d{4}\b`), "phone"},
}

// Pseudonymizer derives pseudonyms with HMAC-SHA256 keyed by a salt.
// No mapping is stored; the same input always yields the same token.
type Pseudonymizer struct {
	salt []byte
}

func New(salt string) *Pseudonymizer {
	return &Pseudonymizer{salt: []byte(salt)}
}

// Identifier returns "USER_" followed by the first 10 hex characters of the
// HMAC of value. The empty string maps to the empty string.
func (p *Pseudonymizer) Identifier(value string) string {
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, p.salt)
	mac.Write([]byte(value))
	return "USER_" + hex.EncodeToString(mac.Sum(nil))[:10]
}

// Text replaces every PII match in s with its pseudonym.
func (p *Pseudonymizer) Text(s string) string {
	for _, pat := range piiPatterns {
		s = pat.re.ReplaceAllStringFunc(s, p.Identifier)
	}
	return s
}

// Kinds reports which PII kinds occur in s, in pattern order, without duplicates.
func Kinds(s string) []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, pat := range piiPatterns {
		if seen[pat.kind] {
			continue
		}
		if pat.re.MatchString(s) {
			seen[pat.kind] = true
			kinds = append(kinds, pat.kind)
		}
	}
	return kinds
}
