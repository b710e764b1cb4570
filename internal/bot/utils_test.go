package bot

import "testing"

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1299":    1299,
		"1 299":   1299,
		"1299,50": 1299.5,
		"1299.50": 1299.5,
		" 500 ₽ ": 500,
		"12 000":  12000,
	}
	for raw, want := range cases {
		got, err := parseAmount(raw)
		if err != nil {
			t.Errorf("parseAmount(%q) unexpected error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("parseAmount(%q) = %v, want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "abc", "12x", "inf", "-Inf", "nan", "NaN"} {
		if _, err := parseAmount(raw); err == nil {
			t.Errorf("parseAmount(%q) expected error", raw)
		}
	}
}

func TestParseItemNumber(t *testing.T) {
	for raw, want := range map[string]int64{"5": 5, "№12": 12, " №3 ": 3} {
		got, err := parseItemNumber(raw)
		if err != nil {
			t.Errorf("parseItemNumber(%q) unexpected error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("parseItemNumber(%q) = %d, want %d", raw, got, want)
		}
	}
	if _, err := parseItemNumber("молоко"); err == nil {
		t.Error("parseItemNumber expected error for non-numeric input")
	}
}

func TestIsHexColor(t *testing.T) {
	valid := []string{"#000000", "#ffffff", "#Ff00aB"}
	for _, s := range valid {
		if !isHexColor(s) {
			t.Errorf("isHexColor(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "#fff", "000000", "#gggggg", "#00000000"}
	for _, s := range invalid {
		if isHexColor(s) {
			t.Errorf("isHexColor(%q) = true, want false", s)
		}
	}
}

func TestThemeLabelRoundTrip(t *testing.T) {
	for _, tb := range themeButtons {
		key, ok := themeKeyByLabel(tb.Label)
		if !ok || key != tb.Key {
			t.Errorf("themeKeyByLabel(%q) = %q, %v; want %q", tb.Label, key, ok, tb.Key)
		}
		if themeLabel(tb.Key) != tb.Label {
			t.Errorf("themeLabel(%q) = %q, want %q", tb.Key, themeLabel(tb.Key), tb.Label)
		}
	}
}
