package hook

import (
	"fmt"
	"strings"
)

type patternKind uint8

const (
	patternExact patternKind = iota
	patternPrefix
	patternSuffix
)

// Pattern is a compiled event-name filter: exact, prefix ("name*") or
// suffix ("*name"). Immutable once parsed.
type Pattern struct {
	kind patternKind
	text string
}

// ParsePattern compiles a filter string. At most one '*' is allowed and it
// must be the first or last character.
func ParsePattern(s string) (Pattern, error) {
	switch strings.Count(s, "*") {
	case 0:
		return Pattern{kind: patternExact, text: s}, nil
	case 1:
	default:
		return Pattern{}, fmt.Errorf("%w: %q", ErrPatternSyntax, s)
	}

	if s[0] == '*' {
		return Pattern{kind: patternSuffix, text: s[1:]}, nil
	}
	if s[len(s)-1] == '*' {
		return Pattern{kind: patternPrefix, text: s[:len(s)-1]}, nil
	}
	return Pattern{}, fmt.Errorf("%w: %q", ErrPatternSyntax, s)
}

// Matches reports whether eventName satisfies the filter. No allocation,
// no case folding.
func (p Pattern) Matches(eventName string) bool {
	switch p.kind {
	case patternPrefix:
		return len(eventName) >= len(p.text) && eventName[:len(p.text)] == p.text
	case patternSuffix:
		return len(eventName) >= len(p.text) && eventName[len(eventName)-len(p.text):] == p.text
	default:
		return eventName == p.text
	}
}
