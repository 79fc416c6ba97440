package theme

import "testing"

func TestGradientBlendsAcrossTabs(t *testing.T) {
	h := Default().Header
	g := h.Gradient(5)
	if len(g) != 5 {
		t.Fatalf("expected 5 colors, got %d", len(g))
	}
	for i, c := range g {
		if len(c) != 7 || c[0] != '#' {
			t.Fatalf("color %d = %q is not a hex color", i, c)
		}
	}
	if g[0] == g[4] {
		t.Fatalf("gradient endpoints should differ")
	}
	if h.Gradient(0) != nil {
		t.Fatalf("empty gradient should be nil")
	}
	if got := h.Gradient(1); len(got) != 1 {
		t.Fatalf("single tab gradient = %v", got)
	}
}

func TestGradientFallsBackOnBadHex(t *testing.T) {
	h := HeaderTheme{TabStart: "nope", TabEnd: "#ffffff"}
	for _, c := range h.Gradient(3) {
		if c != "212" {
			t.Fatalf("expected fallback color, got %q", c)
		}
	}
}
