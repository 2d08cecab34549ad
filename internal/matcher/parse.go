package matcher

import (
	"encoding/json"
	"regexp"
)

// bracketPattern matches the first bracketed substring that contains only
// digits, commas and whitespace - the shape of a bare JSON index array
// embedded in surrounding prose.
var bracketPattern = regexp.MustCompile(`\[[\d,\s]*\]`)

// ExtractIndexList pulls a candidate index list out of raw model output.
// It first attempts a direct JSON array parse of the whole text. If that
// fails, it falls back to extracting the first bracketed digit/comma/space
// substring and parsing just that. Returns nil when both attempts fail.
func ExtractIndexList(text string) []any {
	var direct []any
	if err := json.Unmarshal([]byte(text), &direct); err == nil {
		return direct
	}

	candidate := bracketPattern.FindString(text)
	if candidate == "" {
		return nil
	}

	var extracted []any
	if err := json.Unmarshal([]byte(candidate), &extracted); err != nil {
		return nil
	}
	return extracted
}

// ParseMatches turns raw model output into a normalized match index set.
// Free-text contamination, malformed JSON and out-of-range indices all
// degrade to an empty set rather than an error.
func ParseMatches(text string, groupCount int) []int {
	return NormalizeIndices(ExtractIndexList(text), groupCount)
}
