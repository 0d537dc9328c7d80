// Package redact masks sensitive values in JSON documents.
package redact

import (
	"encoding/json"
	"os"
	"strings"
)

// Mask replaces redacted values.
const Mask = "***REDACTED***"

// KeysEnv overrides the default keys with a comma separated list.
const KeysEnv = "DATACREW_REDACT_KEYS"

var defaultKeys = []string{
	"api_key", "apikey", "authorization", "password", "secret", "token", "access_token", "client_secret",
}

// Keys returns the keys masked when none are given.
func Keys() []string {
	if env := strings.TrimSpace(os.Getenv(KeysEnv)); env != "" {
		var keys []string
		for _, key := range strings.Split(env, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
		return keys
	}
	return append([]string(nil), defaultKeys...)
}

// JSON returns an indented copy of v with the values of keys masked at any depth.
// Keys match case-insensitively; empty keys select Keys().
func JSON(v interface{}, keys []string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var document interface{}
	if err = json.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = Keys()
	}
	masked := make(map[string]bool, len(keys))
	for _, key := range keys {
		masked[strings.ToLower(strings.TrimSpace(key))] = true
	}
	return json.MarshalIndent(scrub(document, masked), "", "  ")
}

func scrub(v interface{}, keys map[string]bool) interface{} {
	switch actual := v.(type) {
	case map[string]interface{}:
		for key, value := range actual {
			if keys[strings.ToLower(key)] {
				actual[key] = Mask
				continue
			}
			actual[key] = scrub(value, keys)
		}
	case []interface{}:
		for i := range actual {
			actual[i] = scrub(actual[i], keys)
		}
	}
	return v
}
