package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Vocabulary maps a tag (a language or a pattern family) to contact-page path fragments.
type Vocabulary map[string][]string

// Tags whose entries are regular expressions rather than plain fragments.
var patternTags = map[string]bool{
	"url_patterns":  true,
	"dynamic_paths": true,
	"special_cases": true,
}

const subdomainTag = "subdomain_patterns"

// Matcher is a compiled Vocabulary
type Matcher struct {
	fragments  []string
	patterns   []*regexp.Regexp
	subdomains []string
}

// Compile turns the vocabulary into a Matcher. It fails on the first invalid pattern.
func (v Vocabulary) Compile() (*Matcher, error) {
	m := &Matcher{}
	for tag, entries := range v {
		for _, entry := range entries {
			entry = strings.ToLower(strings.TrimSpace(entry))
			if entry == "" {
				continue
			}
			switch {
			case patternTags[tag]:
				re, err := regexp.Compile(entry)
				if err != nil {
					return nil, fmt.Errorf("invalid %s pattern %q: %w", tag, entry, err)
				}
				m.patterns = append(m.patterns, re)
			case tag == subdomainTag:
				m.subdomains = append(m.subdomains, entry)
			default:
				m.fragments = append(m.fragments, entry)
			}
		}
	}
	return m, nil
}

// MatchURL reports whether the URL's host, path, query or fragment looks like a contact page.
func (m *Matcher) MatchURL(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	for _, sub := range m.subdomains {
		if strings.HasPrefix(host, sub) {
			return true
		}
	}

	target := strings.ToLower(u.Path)
	if u.RawQuery != "" {
		target += "?" + strings.ToLower(u.RawQuery)
	}
	if u.Fragment != "" {
		target += "#" + strings.ToLower(u.Fragment)
	}
	if target == "" || target == "/" {
		return false
	}

	for _, f := range m.fragments {
		if strings.Contains(target, f) {
			return true
		}
	}
	for _, re := range m.patterns {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// MatchText reports whether anchor text mentions a vocabulary fragment.
// Hyphenated fragments also match their space separated form.
func (m *Matcher) MatchText(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, f := range m.fragments {
		if strings.ContainsAny(f, "/.") {
			continue
		}
		if strings.Contains(text, f) || strings.Contains(text, strings.ReplaceAll(f, "-", " ")) {
			return true
		}
	}
	return false
}
