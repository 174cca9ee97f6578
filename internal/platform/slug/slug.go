package slug

import (
	"strings"
	"unicode"
)

const maxRunes = 48

// Make turns a free-text title into a file-name-safe slug. Letters of any
// script are kept so non-Latin goal titles still produce readable names.
func Make(input string) string {
	var b strings.Builder
	pendingDash := false
	n := 0
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = b.Len() > 0
			continue
		}
		need := 1
		if pendingDash {
			need = 2
		}
		if n+need > maxRunes {
			break
		}
		if pendingDash {
			b.WriteByte('-')
			n++
			pendingDash = false
		}
		b.WriteRune(r)
		n++
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}
