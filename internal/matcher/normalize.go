package matcher

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// NormalizeIndices converts an arbitrary decoded value into a clean set of
// 1-based group photo indices: deduplicated, sorted ascending, every value
// within [1, groupCount]. Malformed input never produces an error - anything
// that is not a well-formed in-range integer is silently dropped, and a value
// that is not list-shaped at all yields an empty result.
func NormalizeIndices(raw any, groupCount int) []int {
	result := []int{}
	if groupCount <= 0 {
		return result
	}

	seen := make(map[int]bool)
	for _, elem := range listElements(raw) {
		idx, ok := toIndex(elem)
		if !ok || idx < 1 || idx > groupCount {
			continue
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		result = append(result, idx)
	}

	sort.Ints(result)
	return result
}

// listElements widens the supported list shapes into a single []any.
// JSON decoding produces []any; callers re-normalizing an earlier result
// hand us []int.
func listElements(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case []int:
		elems := make([]any, len(v))
		for i, n := range v {
			elems[i] = n
		}
		return elems
	case []string:
		elems := make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
		return elems
	case []float64:
		elems := make([]any, len(v))
		for i, f := range v {
			elems[i] = f
		}
		return elems
	default:
		return nil
	}
}

// toIndex coerces a single list element to an integer. Numeric strings are
// trimmed and converted; floats are accepted only when integral.
func toIndex(elem any) (int, bool) {
	switch v := elem.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
