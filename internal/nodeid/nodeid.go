// Package nodeid implements the fully-qualified-name grammar jobs are
// addressed by: the literal "graph$$variant$$short$$" format, its parsing,
// and collision-free variant assignment.
package nodeid

import (
	"fmt"
	"strings"
)

// Delimiter separates the three segments of a fully-qualified name.
const Delimiter = "$$"

// UnsupportedNameFormat is returned by the Parse* functions when the input
// does not match the "graph$$variant$$short$$" grammar. Callers must treat
// it as a programming error, not silently proceed.
const UnsupportedNameFormat = "UNSUPPORTED_NAME_FORMAT"

// MakeFQN builds the fully-qualified name for a job's short name within a
// graph/variant pair. An empty variant is legal and yields a double "$$".
func MakeFQN(graph, variant, short string) string {
	return graph + Delimiter + variant + Delimiter + short + Delimiter
}

// split returns the three segments of a well-formed FQN, or nil if fqn does
// not parse as exactly "graph$$variant$$short$$".
func split(fqn string) []string {
	parts := strings.Split(fqn, Delimiter)
	if len(parts) != 4 || parts[3] != "" {
		return nil
	}
	return parts
}

// ParseShortName extracts the short-name segment from an FQN, or returns
// UnsupportedNameFormat if fqn is malformed.
func ParseShortName(fqn string) string {
	parts := split(fqn)
	if parts == nil {
		return UnsupportedNameFormat
	}
	return parts[2]
}

// ParseGraphName extracts the graph-name segment from an FQN, or returns
// UnsupportedNameFormat if fqn is malformed.
func ParseGraphName(fqn string) string {
	parts := split(fqn)
	if parts == nil {
		return UnsupportedNameFormat
	}
	return parts[0]
}

// ParseVariant extracts the variant segment from an FQN, or returns
// UnsupportedNameFormat if fqn is malformed.
func ParseVariant(fqn string) string {
	parts := split(fqn)
	if parts == nil {
		return UnsupportedNameFormat
	}
	return parts[1]
}

// UniqueVariant returns variant unchanged if no FQN in existing already
// begins with "graph$$variant$$"; otherwise it appends the lowest integer
// suffix "_N" (starting at 1) that clears the collision. existing is the
// full set of FQNs already assigned across every registered graph, not
// just the jobs of one graph, so variant uniqueness is enforced
// manager-wide.
func UniqueVariant(existing map[string]struct{}, graph, variant string) string {
	if !hasPrefixedMember(existing, graph+Delimiter+variant+Delimiter) {
		return variant
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", variant, n)
		if !hasPrefixedMember(existing, graph+Delimiter+candidate+Delimiter) {
			return candidate
		}
	}
}

func hasPrefixedMember(set map[string]struct{}, prefix string) bool {
	for k := range set {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
