package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pricetag-studio/internal/pricing"
)

// parseAmount reads a user-entered money amount: "1 299", "1299,50" or a
// plain number. ParseFloat accepts "inf" and "nan"; those are rejected so
// a non-finite value never reaches the session.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "", ",", ".", "₽", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("amount must be finite")
	}
	return v, nil
}

// parseItemNumber reads an item number, tolerating the "№5" form the bot
// itself prints in lists.
func parseItemNumber(raw string) (int64, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "№")
	return strconv.ParseInt(cleaned, 10, 64)
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// themeKeyByLabel resolves a keyboard label to its theme key.
func themeKeyByLabel(label string) (string, bool) {
	if label == ButtonThemeFromTable {
		return pricing.DesignTypeTable, true
	}
	for _, tb := range themeButtons {
		if tb.Label == label {
			return tb.Key, true
		}
	}
	return "", false
}

// themeLabel is the inverse mapping for the settings summary.
func themeLabel(key string) string {
	if key == pricing.DesignTypeTable {
		return ButtonThemeFromTable
	}
	for _, tb := range themeButtons {
		if tb.Key == key {
			return tb.Label
		}
	}
	return key
}
