package services

import (
	"regexp"
	"strings"
)

var (
	// Keeps \n, \r and \t.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	zeroWidthRegex    = regexp.MustCompile(`[\x{200B}-\x{200F}\x{FEFF}]`)
	lineSepRegex      = regexp.MustCompile(`\r\n|[\x{2028}\x{2029}\x{0085}\r]`)

	boldRegex     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emphasisRegex = regexp.MustCompile(`\*([^*\s][^*\n]*?)\*`)
	bulletRegex   = regexp.MustCompile(`\*[ \t]*`)
)

// Bullet replaces single-asterisk list and emphasis markers.
const Bullet = "•"

type TextSanitizer struct{}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{}
}

// SanitizeText removes characters that render as garbage in a PDF text run
// and normalizes line separators to \n.
func (ts *TextSanitizer) SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	sanitized := lineSepRegex.ReplaceAllString(text, "\n")
	sanitized = controlCharsRegex.ReplaceAllString(sanitized, "")
	sanitized = zeroWidthRegex.ReplaceAllString(sanitized, "")
	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")

	return strings.TrimSpace(sanitized)
}

// StripMarkdown unwraps **bold** runs and turns the remaining asterisk
// markers into bullet glyphs: "*tip*" becomes "• tip" and "* item" becomes
// "• item".
func (ts *TextSanitizer) StripMarkdown(text string) string {
	stripped := boldRegex.ReplaceAllString(text, "$1")
	stripped = emphasisRegex.ReplaceAllString(stripped, Bullet+" $1")
	return bulletRegex.ReplaceAllString(stripped, Bullet+" ")
}

// Normalize prepares model output for the report body.
func (ts *TextSanitizer) Normalize(text string) string {
	return ts.StripMarkdown(ts.SanitizeText(text))
}
