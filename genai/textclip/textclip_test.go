package textclip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	text := "a\nb\nc\nd"
	testCases := []struct {
		description string
		start       int
		count       int
		expect      string
		expectErr   bool
	}{
		{description: "whole text", start: 1, expect: text},
		{description: "head", start: 1, count: 2, expect: "a\nb"},
		{description: "middle", start: 2, count: 2, expect: "b\nc"},
		{description: "tail from start", start: 3, expect: "c\nd"},
		{description: "count past end", start: 3, count: 10, expect: "c\nd"},
		{description: "start past end", start: 9, count: 1, expect: ""},
		{description: "last line", start: 4, count: 1, expect: "d"},
		{description: "zero start", start: 0, expectErr: true},
		{description: "negative count", start: 1, count: -1, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Lines(text, testCase.start, testCase.count)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}
