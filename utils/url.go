package utils

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// socialHosts are never accepted as a company website
var socialHosts = []string{"facebook.com", "twitter.com", "linkedin.com"}

// RegistrableDomain returns the public-suffix aware root of rawURL's host,
// e.g. acme.co.uk for https://www.acme.co.uk/contact.
func RegistrableDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return publicsuffix.EffectiveTLDPlusOne(host)
}

// DomainLabel returns the registrable domain without its public suffix,
// e.g. acme for https://www.acme.co.uk.
func DomainLabel(rawURL string) (string, error) {
	domain, err := RegistrableDomain(rawURL)
	if err != nil {
		return "", err
	}
	label, _, _ := strings.Cut(domain, ".")
	return label, nil
}

// SameSite reports whether a and b share a registrable domain
func SameSite(a, b string) bool {
	da, err := RegistrableDomain(a)
	if err != nil {
		return false
	}
	db, err := RegistrableDomain(b)
	if err != nil {
		return false
	}
	return da == db
}

// IsValidURL checks that rawURL is an absolute http(s) URL with a plausible
// host that is not a social network. Hosts belonging to any of directories
// are rejected too.
func IsValidURL(rawURL string, directories []string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	host := strings.ToLower(parsed.Host)
	if len(host) <= 3 || !strings.Contains(host, ".") {
		return false
	}
	for _, social := range socialHosts {
		if strings.Contains(host, social) {
			return false
		}
	}
	for _, dir := range directories {
		dirHost, _, _ := strings.Cut(strings.ToLower(dir), "/")
		if dirHost != "" && strings.Contains(host, dirHost) {
			return false
		}
	}
	return true
}

// Absolute resolves href against base. Unparseable input is returned unchanged.
func Absolute(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
