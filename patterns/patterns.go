// Package patterns holds the compiled regular expressions that propose email
// and phone candidates from raw text. Proposals are unvalidated; the First*
// helpers are the accept path and run every proposal through package validate.
package patterns

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"contactscraper/validate"
)

// Field names a piece of structured contact data
type Field string

const (
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldWebsite Field = "website"
)

type emailPattern struct {
	re *regexp.Regexp
	// decode turns a raw match into plain text before the standard pattern
	// is run over it again. Nil means the match is already plain.
	decode func(string) string
}

var standardEmail = regexp.MustCompile(`(?i)(?:mailto:|e-?mail:?\s*)?([a-z0-9][a-z0-9._%+-]{0,63}@[a-z0-9][a-z0-9.-]*\.[a-z]{2,}(?:\.[a-z]{2,})?)`)

const (
	bracketAt  = `\s*[\[({<]\s*(?:at|@)\s*[\])}>]\s*`
	bracketDot = `\s*[\[({<]\s*(?:dot|\.)\s*[\])}>]\s*`
)

var (
	obfuscatedAt  = regexp.MustCompile(`(?i)` + bracketAt + `|\s+at\s+`)
	obfuscatedDot = regexp.MustCompile(`(?i)` + bracketDot + `|\s+dot\s+`)
	jsHexEscape   = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
)

var emailPatterns = []emailPattern{
	{re: standardEmail},
	// john [at] acme [dot] com, john [at] acme.com
	{
		re:     regexp.MustCompile(`(?i)([a-z0-9._%+-]+` + bracketAt + `[a-z0-9][a-z0-9-]*(?:(?:` + bracketDot + `|\s+dot\s+|\.)[a-z0-9-]+)+)`),
		decode: deobfuscate,
	},
	// john at acme dot com; a bare "at" needs a spelled or bracketed dot,
	// otherwise "visit us at acme.com" would read as us@acme.com
	{
		re:     regexp.MustCompile(`(?i)([a-z0-9._%+-]+\s+at\s+[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*(?:` + bracketDot + `|\s+dot\s+)[a-z0-9-]+(?:(?:` + bracketDot + `|\s+dot\s+|\.)[a-z0-9-]+)*)`),
		decode: deobfuscate,
	},
	// &#105;&#110;fo&#64;acme.com
	{
		re:     regexp.MustCompile(`(?i)((?:&#x?[0-9a-f]+;|&[a-z]+;|[a-z0-9._%+-])+(?:@|&#0*64;|&#x0*40;|&commat;)(?:&#x?[0-9a-f]+;|&[a-z]+;|[a-z0-9.-])+\.[a-z]{2,})`),
		decode: html.UnescapeString,
	},
	// info%40acme.com
	{
		re:     regexp.MustCompile(`(?i)((?:%[0-9a-f]{2}|[a-z0-9._+-])+%40(?:%[0-9a-f]{2}|[a-z0-9.-])+)`),
		decode: percentDecode,
	},
	// unescape('%69nfo%40acme.com'), decodeURIComponent("\x69nfo\x40acme.com")
	{
		re:     regexp.MustCompile(`(?i)(?:unescape|decodeURIComponent)\(\s*['"]((?:%[0-9a-f]{2}|\\x[0-9a-f]{2}|[a-z0-9._@+-])+)['"]\s*\)`),
		decode: func(s string) string { return percentDecode(jsHexEscape.ReplaceAllString(s, "%$1")) },
	},
}

var phonePatterns = []*regexp.Regexp{
	// international, + or 00 prefix
	regexp.MustCompile(`(?:\+|\b00)[1-9]\d{0,3}[\s.-]?\(?\d{1,4}\)?(?:[\s.-]?\d{2,10}){1,3}`),
	// North American with optional extension
	regexp.MustCompile(`(?i)(?:\+?1[\s.-]?)?\(?[2-9]\d{2}\)?[\s.-]?[2-9]\d{2}[\s.-]?\d{4}(?:\s*(?:ext|x|extension)[\s.:-]*\d{2,5})?`),
	regexp.MustCompile(`(?i)tel:\+?[0-9]{11}`),
	// European
	regexp.MustCompile(`\+[1-9][0-9]{1,2}[\s.-]?(?:\([1-9]\d{0,4}\)|[1-9]\d{0,4})[\s.-]?\d{4,10}`),
	// labelled
	regexp.MustCompile(`(?i)(?:tel|tél|phone|telephone|contact|call|fax|mobile|cell)[\s:]+[+\d\s().-]{8,20}`),
	// UK
	regexp.MustCompile(`(?:0|\+44)\s*[1-9]\d{2,4}\s*\d{6}`),
	// China, Japan, Korea
	regexp.MustCompile(`(?:(?:\+?86|0086)\s*(?:1[3-9]\d{9}|[2-9][1-9]\d{8})|(?:\+?81|0081)\s*(?:[789]0\d{8}|\d{2,4}\d{7,8})|(?:\+?82|0082)\s*(?:1[0-9]{8,9}|2\d{7,8}|[3-6]\d{8}))`),
	// Middle East
	regexp.MustCompile(`(?:\+?9[0-9]{2}|009[0-9]{2})\s*[1-9]\d{8,11}`),
	// sip: and tel: URIs
	regexp.MustCompile(`(?i)(?:sip|tel):\+?[0-9]{8,20}(?:;ext=[0-9]{2,5})?`),
}

var schemaPatterns = map[Field][]*regexp.Regexp{
	FieldEmail: {
		regexp.MustCompile(`"email"\s*:\s*"([^"]+?@[^"]+?\.[^"]+)"`),
		regexp.MustCompile(`"contactPoint"\s*:\s*\{[^}]*"email"\s*:\s*"([^"]+?@[^"]+?\.[^"]+)"`),
		regexp.MustCompile(`<meta\s+(?:property|name)="(?:og:)?email"\s+content="([^"]+?@[^"]+?\.[^"]+)"`),
		regexp.MustCompile(`data-email="([^"]+?@[^"]+?\.[^"]+)"`),
	},
	FieldPhone: {
		regexp.MustCompile(`"telephone"\s*:\s*"([+\d\s().-]{8,20})"`),
		regexp.MustCompile(`"contactPoint"\s*:\s*\{[^}]*"telephone"\s*:\s*"([+\d\s().-]{8,20})"`),
		regexp.MustCompile(`<meta\s+(?:property|name)="(?:og:)?phone_number"\s+content="([+\d\s().-]{8,20})"`),
		regexp.MustCompile(`data-phone="([+\d\s().-]{8,20})"`),
	},
	FieldWebsite: {
		regexp.MustCompile(`"url"\s*:\s*"((?:https?:)?//[^"]+)"`),
		regexp.MustCompile(`"website"\s*:\s*"((?:https?:)?//[^"]+)"`),
		regexp.MustCompile(`<meta\s+(?:property|name)="(?:og:)?url"\s+content="((?:https?:)?//[^"]+)"`),
		regexp.MustCompile(`data-website="((?:https?:)?//[^"]+)"`),
	},
}

// FindEmails returns every email proposal in text, in pattern order.
// Obfuscated and encoded forms are decoded. Nothing is validated.
func FindEmails(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(candidate string) {
		candidate = validate.NormalizeEmail(candidate)
		if candidate != "" && !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
	}

	for _, p := range emailPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			if p.decode == nil {
				add(raw)
				continue
			}
			for _, inner := range standardEmail.FindAllStringSubmatch(p.decode(raw), -1) {
				add(inner[1])
			}
		}
	}
	return out
}

// FindPhones returns every phone proposal in text, in pattern order. Nothing is validated.
func FindPhones(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range phonePatterns {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// FirstEmail returns the first proposal in text that passes validation
func FirstEmail(text string) (string, bool) {
	for _, candidate := range FindEmails(text) {
		if validate.Email(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// FirstPhone returns the first valid phone proposal in text, formatted
func FirstPhone(text string) (string, bool) {
	for _, candidate := range FindPhones(text) {
		if validate.Phone(candidate) {
			return validate.FormatPhone(candidate), true
		}
	}
	return "", false
}

// HasEmail reports whether text contains something shaped like an email
func HasEmail(text string) bool {
	return standardEmail.MatchString(text)
}

// HasPhone reports whether text contains something shaped like a phone number
func HasPhone(text string) bool {
	for _, re := range phonePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Schema returns the raw captures of the structured-data patterns for field, in order.
func Schema(field Field, text string) []string {
	var out []string
	for _, re := range schemaPatterns[field] {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

// SchemaEmail returns the first valid email found by the structured-data patterns
func SchemaEmail(text string) (string, bool) {
	for _, candidate := range Schema(FieldEmail, text) {
		candidate = validate.NormalizeEmail(candidate)
		if validate.Email(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// SchemaPhone returns the first valid phone found by the structured-data patterns, formatted
func SchemaPhone(text string) (string, bool) {
	for _, candidate := range Schema(FieldPhone, text) {
		if validate.Phone(candidate) {
			return validate.FormatPhone(candidate), true
		}
	}
	return "", false
}

func deobfuscate(s string) string {
	s = obfuscatedAt.ReplaceAllString(s, "@")
	s = obfuscatedDot.ReplaceAllString(s, ".")
	return strings.Join(strings.Fields(s), "")
}

func percentDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
