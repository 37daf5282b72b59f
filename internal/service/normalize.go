package service

import "strings"

// Scanner keyboard layouts turn the hyphen into one of these.
var codeReplacer = strings.NewReplacer(
	"'", "-",
	"´", "-",
	"`", "-",
	"‘", "-",
	"’", "-",
)

// NormalizeCode canonicalizes a scanned or typed code: upper case,
// ambiguous punctuation mapped to '-', surrounding whitespace trimmed.
// NormalizeCode(NormalizeCode(s)) == NormalizeCode(s).
func NormalizeCode(s string) string {
	return strings.TrimSpace(codeReplacer.Replace(strings.ToUpper(s)))
}

func normalizeAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if n := NormalizeCode(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}
