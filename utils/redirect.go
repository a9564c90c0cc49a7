package utils

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

var jsRedirect = regexp.MustCompile(`var\s+u\s*=\s*"([^"]+)"`)

// UnwrapURL returns the destination of a Google /url?q= or Bing /ck/a?u= redirect
// link, or href unchanged.
func UnwrapURL(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	host := parsed.Hostname()
	params := parsed.Query()

	switch {
	case parsed.Path == "/url" && (host == "" || strings.Contains(host, "google.")):
		for _, key := range []string{"q", "url"} {
			if target := params.Get(key); strings.HasPrefix(target, "http") {
				return target
			}
		}
	case parsed.Path == "/ck/a" && strings.Contains(host, "bing."):
		if target, ok := decodeBingTarget(params.Get("u")); ok {
			return target
		}
	case strings.Contains(strings.ToLower(parsed.Path), "redir"):
		// directory outbound links, e.g. /biz_redir?url=https://acme.com
		for _, key := range []string{"url", "u", "target", "to"} {
			if target := params.Get(key); strings.HasPrefix(target, "http") {
				return target
			}
		}
	}
	return href
}

// ExtractRedirectURL reads the target out of a Bing interstitial page
// (var u = "...") when the link itself could not be decoded.
func ExtractRedirectURL(html string) (string, bool) {
	matches := jsRedirect.FindStringSubmatch(html)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// Bing encodes the destination as "a1" followed by unpadded base64url
func decodeBingTarget(u string) (string, bool) {
	if !strings.HasPrefix(u, "a1") {
		return "", false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(u[2:], "="))
	if err != nil {
		return "", false
	}
	target := string(decoded)
	if !strings.HasPrefix(target, "http") {
		return "", false
	}
	return target, true
}
