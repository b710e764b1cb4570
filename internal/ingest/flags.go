package ingest

import "strings"

// Closed token sets for the per-row discount column. Values outside both
// sets (and empty cells) mean "no opinion" and map to nil.
var (
	truthyTokens = map[string]struct{}{
		"да": {}, "true": {}, "yes": {}, "1": {}, "истина": {},
		"y": {}, "д": {}, "+": {}, "т": {}, "true1": {},
	}
	falsyTokens = map[string]struct{}{
		"нет": {}, "false": {}, "no": {}, "0": {}, "ложь": {},
		"n": {}, "н": {}, "-": {}, "ф": {}, "false0": {},
	}
)

// ParseDiscountFlag maps a raw cell value to the tri-state per-row
// discount override: true, false, or nil for "defer to the global toggle".
func ParseDiscountFlag(raw string) *bool {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return nil
	}
	if _, ok := truthyTokens[token]; ok {
		v := true
		return &v
	}
	if _, ok := falsyTokens[token]; ok {
		v := false
		return &v
	}
	return nil
}
