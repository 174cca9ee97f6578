package markdown

import "strings"

// Block is a generated region of a note delimited by marker comments. Text
// outside the markers belongs to the user and survives regeneration.
type Block struct {
	Start string
	End   string
}

func (b Block) Replace(body, generated string) string {
	block := b.Start + "\n" + generated + "\n" + b.End
	if start, end, ok := b.bounds(body); ok {
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Extract returns the generated text between the markers.
func (b Block) Extract(body string) (string, bool) {
	start, end, ok := b.bounds(body)
	if !ok {
		return "", false
	}
	inner := body[start+len(b.Start) : end-len(b.End)]
	return strings.Trim(inner, "\n"), true
}

func (b Block) bounds(body string) (int, int, bool) {
	start := strings.Index(body, b.Start)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(body[start:], b.End)
	if rel < 0 {
		return 0, 0, false
	}
	return start, start + rel + len(b.End), true
}
