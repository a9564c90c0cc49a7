package discover

import "strings"

// ScoreURL rates how contact-like a URL looks from its structure alone,
// from 0 to 1. Deep paths are penalised.
func ScoreURL(link string) float64 {
	lower := strings.ToLower(link)

	score := 0.0
	switch {
	case strings.Contains(lower, "/contact"):
		score = 0.8
	case strings.Contains(lower, "reach"), strings.Contains(lower, "touch"), strings.Contains(lower, "connect"):
		score = 0.6
	case strings.Contains(lower, "/about"):
		score = 0.4
	case strings.Contains(lower, "/support"), strings.Contains(lower, "/help"):
		score = 0.5
	}

	// the scheme's "//" accounts for two slashes
	if depth := strings.Count(link, "/") - 2; depth > 2 {
		score -= 0.1 * float64(depth-2)
	}

	return max(0, min(1, score))
}
