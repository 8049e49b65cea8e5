package taxonomy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	octetRegex      = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	dashRegex       = regexp.MustCompile(`-+`)
)

// Normalize trims, lowercases and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// maxSanitizePasses bounds SanitizeText. Every pass that changes the text
// shortens or keeps its length, so real input settles in two or three.
const maxSanitizePasses = 16

// SanitizeText cleans free text for display: invalid UTF-8 and markup are
// removed (script and style bodies included), character references are
// decoded, percent-encoded octets and control characters dropped, and
// whitespace collapsed and trimmed. Passes repeat until the text stops
// changing, so encoded markup such as "&lt;b&gt;" is stripped once decoded
// and the result sanitizes to itself.
func SanitizeText(s string) string {
	for range maxSanitizePasses {
		next := sanitizeTextOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func sanitizeTextOnce(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = StripTags(s)

	// Octets are removed until none remain so "%2%41" cannot reassemble.
	for octetRegex.MatchString(s) {
		s = octetRegex.ReplaceAllString(s, "")
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// StripTags returns the text content of an HTML fragment.
func StripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if rawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if rawTextTag(z) && skip > 0 {
				skip--
			}
		}
	}
}

func rawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// Slugify turns arbitrary text into a URL slug: markup stripped, accents
// removed, lowercased, anything but letters, digits, underscores and dashes
// dropped, whitespace and dots turned into dashes, dashes collapsed and
// trimmed.
func Slugify(s string) string {
	s = StripTags(s)
	s = removeAccents(s)
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(r)
		case r == '.' || unicode.IsSpace(r):
			b.WriteByte('-')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	slug := dashRegex.ReplaceAllString(b.String(), "-")
	return strings.Trim(slug, "-")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
