// Package jsonrepair recovers JSON documents from language-model output that
// may be wrapped in markdown fences or cut off mid-stream.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnrecoverable = errors.New("json unrecoverable")

// StripCodeFence removes a leading ```/```json line and a trailing ``` marker.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// Salvage cuts text after the last complete object and closes whatever
// arrays/objects are still open at that point. Trailing content after a
// complete root value is dropped. Strings are tracked so braces inside
// quoted values do not count.
func Salvage(raw string) (string, bool) {
	text := StripCodeFence(raw)
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	text = text[start:]

	stack := make([]byte, 0, 8)
	var cutStack []byte
	cut := -1
	inString := false
	escaped := false

scan:
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != opener(c) {
				break scan
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return text[:i+1], true
			}
			if c == '}' {
				cut = i + 1
				cutStack = append(cutStack[:0], stack...)
			}
		}
	}

	if cut < 0 {
		return "", false
	}

	var b strings.Builder
	b.Grow(cut + len(cutStack))
	b.WriteString(text[:cut])
	for i := len(cutStack) - 1; i >= 0; i-- {
		b.WriteByte(closer(cutStack[i]))
	}
	return b.String(), true
}

// Decode parses raw strictly, then retries once on the salvaged text.
// The returned flag reports whether salvage was needed.
func Decode(raw string, out any) (bool, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return false, fmt.Errorf("%w: empty input", ErrUnrecoverable)
	}
	strictErr := json.Unmarshal([]byte(text), out)
	if strictErr == nil {
		return false, nil
	}

	repaired, ok := Salvage(text)
	if !ok {
		return false, fmt.Errorf("%w: %v", ErrUnrecoverable, strictErr)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return true, fmt.Errorf("%w: strict: %v; salvaged: %v", ErrUnrecoverable, strictErr, err)
	}
	return true, nil
}

func opener(c byte) byte {
	if c == '}' {
		return '{'
	}
	return '['
}

func closer(c byte) byte {
	if c == '{' {
		return '}'
	}
	return ']'
}
