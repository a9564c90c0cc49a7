// Package validate decides whether a raw email or phone candidate is acceptable.
// Every function here is pure.
package validate

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// placeholderDomains are template addresses that show up on unfinished sites
var placeholderDomains = map[string]bool{
	"example.com":     true,
	"domain.com":      true,
	"email.com":       true,
	"test.com":        true,
	"yourwebsite.com": true,
	"company.com":     true,
	"website.com":     true,
}

const (
	minEmailLength = 3
	maxEmailLength = 254
	minPhoneLength = 5
	maxPhoneLength = 20
)

// Email reports whether candidate is a plausible contact address.
func Email(candidate string) bool {
	email := strings.ToLower(strings.TrimSpace(candidate))
	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return false
	}
	if !emailRegex.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return !placeholderDomains[domain]
}

// NormalizeEmail strips mailto prefixes, query strings and surrounding
// punctuation and lowercases the result. It does not validate.
func NormalizeEmail(candidate string) string {
	email := strings.TrimSpace(candidate)
	if len(email) >= 7 && strings.EqualFold(email[:7], "mailto:") {
		email = email[7:]
	}
	if i := strings.IndexByte(email, '?'); i >= 0 {
		email = email[:i]
	}
	email = strings.Trim(email, " \t\r\n.,;:<>()[]{}\"'")
	return strings.ToLower(email)
}

// Clean keeps only digits and '+'
func Clean(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))
	for _, r := range candidate {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone reports whether candidate looks like a phone number. The check is
// deliberately loose: 5 to 20 digits or plus signs with at least one digit.
func Phone(candidate string) bool {
	cleaned := Clean(candidate)
	if len(cleaned) < minPhoneLength || len(cleaned) > maxPhoneLength {
		return false
	}
	return strings.ContainsAny(cleaned, "0123456789")
}

// FormatPhone normalizes a phone candidate. Numbers already carrying a '+'
// are kept, bare 10 digit numbers get the +1 country code.
func FormatPhone(candidate string) string {
	cleaned := Clean(candidate)
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if len(cleaned) == 10 {
		return "+1" + cleaned
	}
	return cleaned
}
