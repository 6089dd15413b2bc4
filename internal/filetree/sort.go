package filetree

import (
	"fmt"
	"strings"
)

const (
	// SortKeyNatural orders names case-insensitively with digit runs compared as numbers.
	SortKeyNatural = "natural"
	// SortKeyLexicographic orders names case-insensitively.
	SortKeyLexicographic = "lex"
	// SortKeyCustom delegates ordering to a caller-supplied comparator.
	SortKeyCustom = "custom"
	// SortKeyNone preserves the enumeration order reported by the operating system.
	SortKeyNone = "none"

	// DefaultSortKeyName selects the ordering used when none is configured.
	DefaultSortKeyName = SortKeyNatural

	unknownSortKeyErrorFormat = "%w: %q (choose one of %s)"
)

// Comparator orders two entry names: negative places firstName earlier,
// positive places it later, zero keeps the enumeration order (sorting is stable).
type Comparator func(firstName string, secondName string) int

// SortKeyNames returns the registered sort key names in deterministic order.
func SortKeyNames() []string {
	return []string{SortKeyNatural, SortKeyLexicographic, SortKeyCustom, SortKeyNone}
}

// resolveComparator maps a sort key name to its comparator. A nil comparator
// disables sorting. The registry is closed apart from the injected custom
// comparator; an unknown name is a configuration error.
func resolveComparator(sortKeyName string, customComparator Comparator) (Comparator, error) {
	switch strings.ToLower(sortKeyName) {
	case "", SortKeyNatural:
		return CompareNatural, nil
	case SortKeyLexicographic:
		return CompareLexicographic, nil
	case SortKeyCustom:
		if customComparator == nil {
			return nil, ErrMissingCustomSort
		}
		return customComparator, nil
	case SortKeyNone:
		return nil, nil
	default:
		return nil, fmt.Errorf(unknownSortKeyErrorFormat, ErrInvalidSortKey, sortKeyName, strings.Join(SortKeyNames(), ", "))
	}
}

// CompareLexicographic orders names case-insensitively.
func CompareLexicographic(firstName string, secondName string) int {
	return strings.Compare(strings.ToLower(firstName), strings.ToLower(secondName))
}

// CompareNatural orders names case-insensitively while comparing embedded
// digit runs by numeric value, so "file2" sorts before "file10".
func CompareNatural(firstName string, secondName string) int {
	firstRuns := splitAlternatingRuns(strings.ToLower(firstName))
	secondRuns := splitAlternatingRuns(strings.ToLower(secondName))
	for runIndex := 0; runIndex < len(firstRuns) && runIndex < len(secondRuns); runIndex++ {
		var comparison int
		if runIndex%2 == 1 {
			comparison = compareDigitRuns(firstRuns[runIndex], secondRuns[runIndex])
		} else {
			comparison = strings.Compare(firstRuns[runIndex], secondRuns[runIndex])
		}
		if comparison != 0 {
			return comparison
		}
	}
	switch {
	case len(firstRuns) < len(secondRuns):
		return -1
	case len(firstRuns) > len(secondRuns):
		return 1
	default:
		return 0
	}
}

// splitAlternatingRuns cuts a name into alternating text and digit runs. The
// first run is always text, possibly empty, so two split results compare
// run-for-run with matching kinds at every index.
func splitAlternatingRuns(value string) []string {
	runs := []string{""}
	runIsDigits := false
	runStart := 0
	for byteIndex := 0; byteIndex < len(value); byteIndex++ {
		characterIsDigit := value[byteIndex] >= '0' && value[byteIndex] <= '9'
		if characterIsDigit == runIsDigits {
			continue
		}
		runs[len(runs)-1] = value[runStart:byteIndex]
		runs = append(runs, "")
		runStart = byteIndex
		runIsDigits = characterIsDigit
	}
	runs[len(runs)-1] = value[runStart:]
	if len(value) == 0 {
		runs[0] = ""
	}
	return runs
}

// compareDigitRuns compares two digit runs by numeric value without integer
// conversion, so arbitrarily long runs cannot overflow. Leading zeros are
// stripped; equal values compare as zero regardless of zero padding.
func compareDigitRuns(firstRun string, secondRun string) int {
	firstTrimmed := strings.TrimLeft(firstRun, "0")
	secondTrimmed := strings.TrimLeft(secondRun, "0")
	if len(firstTrimmed) != len(secondTrimmed) {
		if len(firstTrimmed) < len(secondTrimmed) {
			return -1
		}
		return 1
	}
	return strings.Compare(firstTrimmed, secondTrimmed)
}
