package air

import (
	"strconv"
	"strings"
)

// ApplyLens resolves a lambda path (e.g. ".$.message" or ".$.items.0")
// against v, returning the selected sub-value. Script parsing and the
// full lambda/path grammar are out of scope (§1); this implements the
// minimal dotted-field-and-index subset the interpreter needs to resolve
// %last_error%.$.message and similar call/ap argument paths.
func ApplyLens(v JValue, lens string) (JValue, error) {
	segments := parseLensSegments(lens)
	cur := v
	for _, seg := range segments {
		next, ok := stepLens(cur, seg)
		if !ok {
			return nil, ErrLambdaApplicableOnlyToObjectsAndArrays(cur)
		}
		cur = next
	}
	return cur, nil
}

func parseLensSegments(lens string) []string {
	trimmed := strings.TrimPrefix(lens, ".$")
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ".")
}

func stepLens(v JValue, seg string) (JValue, bool) {
	if idx, err := strconv.Atoi(seg); err == nil {
		arr, ok := v.([]interface{})
		if !ok || idx < 0 || idx >= len(arr) {
			return nil, false
		}
		return arr[idx], true
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	val, present := obj[seg]
	return val, present
}
