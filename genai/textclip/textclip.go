// Package textclip selects line ranges of text.
package textclip

import (
	"fmt"
	"strings"
)

// Lines returns count lines of text starting at the 1-based start line; a
// zero count selects every remaining line. Ranges past the end are clipped.
func Lines(text string, start, count int) (string, error) {
	if start < 1 {
		return "", fmt.Errorf("invalid start line %d, lines are numbered from 1", start)
	}
	if count < 0 {
		return "", fmt.Errorf("invalid line count %d", count)
	}
	if start == 1 && count == 0 {
		return text, nil
	}
	offset := 0
	for line := 1; line < start; line++ {
		index := strings.IndexByte(text[offset:], '\n')
		if index == -1 {
			return "", nil
		}
		offset += index + 1
	}
	rest := text[offset:]
	if count == 0 {
		return rest, nil
	}
	end := 0
	for line := 0; line < count; line++ {
		index := strings.IndexByte(rest[end:], '\n')
		if index == -1 {
			return rest, nil
		}
		end += index + 1
	}
	return strings.TrimSuffix(rest[:end], "\n"), nil
}
