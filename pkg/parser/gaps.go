package parser

import (
	"fmt"
	"sort"
)

// DetectGaps inspects ordered article identifiers for non-contiguous
// numbering. Letter suffixes are dropped for numeric comparison
// ("27-A" compares as 27). One warning is emitted for every adjacent
// pair of sorted numbers whose difference exceeds 1.
//
// Findings are purely advisory: they never block parsing and never
// alter confidence.
func DetectGaps(ids []string) []string {
	var nums []int
	for _, id := range ids {
		if n := leadingNumber(id); n > 0 {
			nums = append(nums, n)
		}
	}
	if len(nums) < 2 {
		return nil
	}

	sort.Ints(nums)

	var warnings []string
	for i := 1; i < len(nums); i++ {
		if nums[i]-nums[i-1] > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"non-contiguous article numbering: gap between %d and %d",
				nums[i-1], nums[i]))
		}
	}
	return warnings
}
