package installer

import (
	"regexp"
	"strings"
)

// marker ties one severity to the bracketed tokens that announce it.
type marker struct {
	severity Severity
	tokens   []string
}

// markers is checked in order; the first severity with a matching token wins.
var markers = []marker{
	{SeverityError, []string{"[ERROR]", "[✗]"}},
	{SeverityWarning, []string{"[WARNING]", "[!]"}},
	{SeveritySuccess, []string{"[SUCCESS]", "[✓]"}},
	{SeverityInfo, []string{"[INFO]", "[ℹ]", "[STEP]"}},
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// Classify maps one line of installer output to a severity and the message
// without its marker. Lines without a marker are Info.
func Classify(line string) (Severity, string) {
	clean := strings.TrimSpace(ansiEscape.ReplaceAllString(line, ""))

	for _, m := range markers {
		for _, tok := range m.tokens {
			if strings.Contains(clean, tok) {
				return m.severity, strings.TrimSpace(strings.Replace(clean, tok, "", 1))
			}
		}
	}
	return SeverityInfo, clean
}
