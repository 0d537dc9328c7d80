// Package templating renders velty templates such as agent system prompts.
package templating

import (
	"fmt"
	"sort"

	"github.com/viant/velty"
)

// Expand renders tmpl with vars, referenced as $name or ${name}.
func Expand(tmpl string, vars map[string]interface{}) (string, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	planner := velty.New()
	for _, name := range names {
		if err := planner.DefineVariable(name, vars[name]); err != nil {
			return "", fmt.Errorf("failed to define %v: %w", name, err)
		}
	}
	exec, newState, err := planner.Compile([]byte(tmpl))
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}
	state := newState()
	for _, name := range names {
		if err = state.SetValue(name, vars[name]); err != nil {
			return "", fmt.Errorf("failed to set %v: %w", name, err)
		}
	}
	if err = exec.Exec(state); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return string(state.Buffer.Bytes()), nil
}
