package events

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseScenarioLine decodes one scenario entry of the form
// {"event": "tick", "args": [...]}. The args field is optional.
func ParseScenarioLine(line string) (string, []any, error) {
	if !gjson.Valid(line) {
		return "", nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
	}

	name := gjson.Get(line, "event")
	if !name.Exists() {
		return "", nil, fmt.Errorf("%w: missing event field", ErrInvalidPayload)
	}

	var args []any
	if raw := gjson.Get(line, "args"); raw.IsArray() {
		items := raw.Array()
		args = make([]any, len(items))
		for i, item := range items {
			args[i] = item.Value()
		}
	}
	return name.String(), args, nil
}
