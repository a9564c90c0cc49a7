package resolver

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"contactscraper/utils"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// cleanName lowercases name and drops punctuation
func cleanName(name string) string {
	return strings.Join(strings.Fields(nonWord.ReplaceAllString(strings.ToLower(name), "")), " ")
}

// IsValidCompanySite decides whether link plausibly belongs to companyName.
// Links on excluded domains are rejected; otherwise any one of the name
// matching rules is enough.
func (r *Resolver) IsValidCompanySite(link, companyName string) bool {
	label, err := utils.DomainLabel(link)
	if err != nil || label == "" {
		return false
	}
	if r.excluded[label] {
		return false
	}

	clean := cleanName(companyName)
	words := strings.Fields(clean)
	if len(words) == 0 {
		return false
	}

	for _, word := range words {
		if utf8.RuneCountInString(word) > 2 && strings.Contains(label, word) {
			return true
		}
	}

	var initials strings.Builder
	for _, word := range words {
		first, _ := utf8.DecodeRuneInString(word)
		initials.WriteRune(first)
	}
	if initials.String() == label {
		return true
	}

	if strings.ReplaceAll(clean, " ", "") == label {
		return true
	}

	return similarity(clean, label) > r.cfg.SimilarityThreshold
}

// similarity is the Levenshtein distance normalized to [0,1], 1 meaning identical
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
