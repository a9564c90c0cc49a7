package discover

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"contactscraper/patterns"
	"contactscraper/utils"
)

var (
	contactSectionClass = regexp.MustCompile(`(?i)contact|connect|reach|touch|location`)
	contactFormClass    = regexp.MustCompile(`(?i)contact|enquiry|message`)
	hoursText           = regexp.MustCompile(`(?i)(?:business|opening|office)\s*hours|location|address`)
	socialClass         = regexp.MustCompile(`(?i)social|follow`)
	mapClass            = regexp.MustCompile(`(?i)map|location`)
)

const maxRelevance = 7.0

// Relevance estimates how likely doc carries contact details, from 0 to 1
func Relevance(doc *goquery.Document) float64 {
	score := 0.0

	if hasClass(doc, "div, section", contactSectionClass) {
		score++
	}
	if hasClass(doc, "form", contactFormClass) {
		score++
	}

	text := utils.VisibleText(doc.Selection)
	if hoursText.MatchString(text) {
		score++
	}
	if hasClass(doc, "div, ul", socialClass) {
		score += 0.5
	}
	if patterns.HasEmail(text) {
		score += 1.5
	}
	if patterns.HasPhone(text) {
		score += 1.5
	}
	if hasClass(doc, "iframe, div", mapClass) {
		score += 0.5
	}

	return score / maxRelevance
}

// hasClass reports whether any element matching selector has a class attribute matching re
func hasClass(doc *goquery.Document, selector string, re *regexp.Regexp) bool {
	found := false
	doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if class, ok := sel.Attr("class"); ok && re.MatchString(class) {
			found = true
		}
		return !found
	})
	return found
}
