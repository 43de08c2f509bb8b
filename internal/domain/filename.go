package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackExportName = "Resume"

// ExportFilename returns "CV_{name}.pdf" with whitespace runs turned into
// underscores and path-hostile characters dropped. An empty name falls back
// to "CV_Resume.pdf".
func ExportFilename(name string) string {
	base := strings.Join(strings.Fields(name), "_")
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, base)
	base = strings.Trim(base, "._")
	if base == "" {
		base = fallbackExportName
	}
	return "CV_" + base + ".pdf"
}

// ASCIIFilename folds accents ("Núñez" -> "Nunez") and replaces whatever is
// left outside printable ASCII with '_'. Used for the plain filename= part
// of Content-Disposition.
func ASCIIFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' {
			return '_'
		}
		return r
	}, folded)
}
