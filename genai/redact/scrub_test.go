package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	type call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	testCases := []struct {
		description string
		value       interface{}
		keys        []string
		expect      string
	}{
		{
			description: "default keys at any depth",
			value:       []call{{Name: "FileReader", Arguments: map[string]interface{}{"path": "a.csv", "API_KEY": "sk-1", "nested": map[string]interface{}{"token": "t"}}}},
			expect: `[
  {
    "arguments": {
      "API_KEY": "***REDACTED***",
      "nested": {
        "token": "***REDACTED***"
      },
      "path": "a.csv"
    },
    "name": "FileReader"
  }
]`,
		},
		{
			description: "custom keys",
			value:       map[string]string{"path": "a.csv", "api_key": "sk-1"},
			keys:        []string{"path"},
			expect:      "{\n  \"api_key\": \"sk-1\",\n  \"path\": \"***REDACTED***\"\n}",
		},
		{
			description: "similar names untouched",
			value:       map[string]int{"totalTokens": 10},
			expect:      "{\n  \"totalTokens\": 10\n}",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			t.Setenv(KeysEnv, "")
			actual, err := JSON(testCase.value, testCase.keys)
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, string(actual))
		})
	}
}

func TestKeys(t *testing.T) {
	t.Setenv(KeysEnv, "password, pin,")
	assert.Equal(t, []string{"password", "pin"}, Keys())
	t.Setenv(KeysEnv, "")
	assert.Contains(t, Keys(), "api_key")
}
