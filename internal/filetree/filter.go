package filetree

import (
	"path/filepath"
	"strings"
)

// globMetacharacters marks a filter entry as a pattern rather than a literal name.
const globMetacharacters = "*?["

// NameFilter decides whether an entry name passes an allow/block rule pair.
// Block entries always win; a non-empty allow set admits only its members; an
// empty allow set admits everything not blocked. A NameFilter holds no mutable
// state after construction and is safe for concurrent use.
type NameFilter struct {
	allowLiterals map[string]struct{}
	allowPatterns []string
	blockLiterals map[string]struct{}
	blockPatterns []string
}

// NewNameFilter partitions the allow and block entries into literal names and
// glob patterns. Entries containing *, ?, or [ are matched with shell-glob
// semantics; everything else requires an exact match. Malformed patterns never
// match; they are not an error.
func NewNameFilter(allowEntries []string, blockEntries []string) NameFilter {
	filter := NameFilter{
		allowLiterals: map[string]struct{}{},
		blockLiterals: map[string]struct{}{},
	}
	for _, allowEntry := range allowEntries {
		if strings.ContainsAny(allowEntry, globMetacharacters) {
			filter.allowPatterns = append(filter.allowPatterns, allowEntry)
			continue
		}
		filter.allowLiterals[allowEntry] = struct{}{}
	}
	for _, blockEntry := range blockEntries {
		if strings.ContainsAny(blockEntry, globMetacharacters) {
			filter.blockPatterns = append(filter.blockPatterns, blockEntry)
			continue
		}
		filter.blockLiterals[blockEntry] = struct{}{}
	}
	return filter
}

// Matches reports whether the name passes the filter.
func (filter NameFilter) Matches(name string) bool {
	if matchesSet(name, filter.blockLiterals, filter.blockPatterns) {
		return false
	}
	if len(filter.allowLiterals) == 0 && len(filter.allowPatterns) == 0 {
		return true
	}
	return matchesSet(name, filter.allowLiterals, filter.allowPatterns)
}

func matchesSet(name string, literals map[string]struct{}, patterns []string) bool {
	if _, literalMatch := literals[name]; literalMatch {
		return true
	}
	for _, pattern := range patterns {
		// filepath.Match rejects malformed patterns with ErrBadPattern;
		// such patterns simply never match.
		if patternMatch, matchError := filepath.Match(pattern, name); matchError == nil && patternMatch {
			return true
		}
	}
	return false
}
