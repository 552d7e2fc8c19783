package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Summer Linen":          "summer-linen",
		"  Levi's 501  ":        "levi-s-501",
		"H&M":                   "h-m",
		"--Already-Slugged--":   "already-slugged",
		"Kurta / Kurti (Women)": "kurta-kurti-women",
		"Café Noir":             "caf-noir",
		"!!!":                   "",
		"":                      "",
		"UPPER123lower":         "upper123lower",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOr(t *testing.T) {
	if got := Or("", "Festive Edit"); got != "festive-edit" {
		t.Errorf("blank slug should derive from name, got %q", got)
	}
	if got := Or("Custom Slug", "Festive Edit"); got != "custom-slug" {
		t.Errorf("explicit slug should win, got %q", got)
	}
}
