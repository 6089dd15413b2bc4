package filetree_test

import (
	"sort"
	"testing"

	"github.com/yaronday/nano-dev-utils/internal/filetree"
)

// sortNames orders a copy of the names with the comparator.
func sortNames(names []string, comparator filetree.Comparator) []string {
	ordered := append([]string{}, names...)
	sort.SliceStable(ordered, func(first, second int) bool {
		return comparator(ordered[first], ordered[second]) < 0
	})
	return ordered
}

// equalNames reports whether two name slices match element for element.
func equalNames(actual []string, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for position := range actual {
		if actual[position] != expected[position] {
			return false
		}
	}
	return true
}

// TestCompareNaturalOrdersDigitRunsNumerically verifies the numeric-aware
// ordering against the lexicographic one on the same input.
func TestCompareNaturalOrdersDigitRunsNumerically(testingInstance *testing.T) {
	input := []string{"file2", "file10", "file1"}

	naturalOrder := sortNames(input, filetree.CompareNatural)
	if !equalNames(naturalOrder, []string{"file1", "file2", "file10"}) {
		testingInstance.Errorf("natural order = %v", naturalOrder)
	}

	lexicographicOrder := sortNames(input, filetree.CompareLexicographic)
	if !equalNames(lexicographicOrder, []string{"file1", "file10", "file2"}) {
		testingInstance.Errorf("lexicographic order = %v", lexicographicOrder)
	}
}

// TestCompareNaturalCases verifies individual comparisons.
func TestCompareNaturalCases(testingInstance *testing.T) {
	testCases := []struct {
		testName   string
		firstName  string
		secondName string
		expected   int
	}{
		{testName: "equal names", firstName: "alpha", secondName: "alpha", expected: 0},
		{testName: "case insensitive", firstName: "Alpha", secondName: "alpha", expected: 0},
		{testName: "digit run beats length", firstName: "file9", secondName: "file10", expected: -1},
		{testName: "leading zeros compare equal", firstName: "file007", secondName: "file7", expected: 0},
		{testName: "text before trailing digits", firstName: "file", secondName: "file1", expected: -1},
		{testName: "mixed runs", firstName: "v1.2.10", secondName: "v1.2.9", expected: 1},
		{testName: "digits against text", firstName: "10cats", secondName: "dog", expected: -1},
	}
	for index, testCase := range testCases {
		actual := normalizeComparison(filetree.CompareNatural(testCase.firstName, testCase.secondName))
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): CompareNatural(%q, %q) = %d, expected %d",
				index, testCase.testName, testCase.firstName, testCase.secondName, actual, testCase.expected)
		}
	}
}

// TestCompareLexicographicIsCaseInsensitive verifies the case fold.
func TestCompareLexicographicIsCaseInsensitive(testingInstance *testing.T) {
	if filetree.CompareLexicographic("README", "readme") != 0 {
		testingInstance.Error("expected README and readme to compare equal")
	}
	if normalizeComparison(filetree.CompareLexicographic("Alpha", "beta")) != -1 {
		testingInstance.Error("expected Alpha to order before beta")
	}
}

func normalizeComparison(comparison int) int {
	switch {
	case comparison < 0:
		return -1
	case comparison > 0:
		return 1
	default:
		return 0
	}
}
