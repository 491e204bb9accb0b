// Package extract pulls structured JSON out of free-form model output.
package extract

import "strings"

const (
	fence    = "```"
	fenceTag = "```json"
)

// JSON returns the most plausible JSON object embedded in text, in
// order of preference: the body of a ```json fenced block, the first
// balanced {...} substring, or the input unchanged. The result is
// advisory; callers decide validity with encoding/json.
func JSON(text string) string {
	if inner, ok := fencedJSON(text); ok {
		return inner
	}
	if candidate, ok := firstObject(text); ok {
		return candidate
	}
	return text
}

// fencedJSON extracts the body of the first ```json block. A block
// that never closes is treated as absent so the brace scan can still
// find the payload.
func fencedJSON(text string) (string, bool) {
	start := fenceTagIndex(text)
	if start == -1 {
		return "", false
	}

	rest := text[start+len(fenceTag):]
	end := strings.Index(rest, fence)
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}

// fenceTagIndex returns the byte offset of the first ```json tag,
// matched case-insensitively. Folding is applied to the tag bytes
// alone: ToLower can change rune widths, so offsets into a lowered
// copy do not index the original text.
func fenceTagIndex(text string) int {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], fence)
		if i == -1 {
			return -1
		}

		start := offset + i
		tagEnd := start + len(fenceTag)
		if tagEnd <= len(text) && strings.EqualFold(text[start:tagEnd], fenceTag) {
			return start
		}

		offset = start + 1
	}

	return -1
}

// firstObject scans from the first '{' counting brace depth, ignoring
// braces inside string literals and escaped quotes. Regular expressions
// cannot pair nested braces, so this stays a hand-rolled scan. If the
// object never closes, the candidate runs to the end of the text.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return text[start:], true
}
