package cache

import "strings"

// PatternKind distinguishes the two supported key-matching modes.
type PatternKind int

const (
	// Literal matches one exact key.
	Literal PatternKind = iota
	// PrefixWildcard matches every key sharing a prefix.
	PrefixWildcard
)

// Pattern selects cache keys for invalidation. A trailing '*' in the
// source string makes it a prefix wildcard; anything else is literal.
type Pattern struct {
	Kind  PatternKind
	Value string
}

// ParsePattern builds a Pattern from its string form, e.g. "/api/ponds"
// or "/api/ponds*".
func ParsePattern(s string) Pattern {
	if strings.HasSuffix(s, "*") {
		return Pattern{Kind: PrefixWildcard, Value: strings.TrimSuffix(s, "*")}
	}
	return Pattern{Kind: Literal, Value: s}
}

// ParsePatterns converts a list of pattern strings.
func ParsePatterns(ss []string) []Pattern {
	ps := make([]Pattern, 0, len(ss))
	for _, s := range ss {
		ps = append(ps, ParsePattern(s))
	}
	return ps
}

// Match reports whether key is selected by the pattern.
func (p Pattern) Match(key string) bool {
	switch p.Kind {
	case PrefixWildcard:
		return strings.HasPrefix(key, p.Value)
	default:
		return key == p.Value
	}
}

func (p Pattern) String() string {
	if p.Kind == PrefixWildcard {
		return p.Value + "*"
	}
	return p.Value
}
