package parser

import "testing"

func TestParseIngredientLineQuantityFirst(t *testing.T) {
	t.Parallel()

	parsed, ok := parseIngredientLine("500 г свеклы")
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if parsed.Quantity != "500" || parsed.Unit != "г" || parsed.Name != "свеклы" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseIngredientLineNameFirst(t *testing.T) {
	t.Parallel()

	parsed, ok := parseIngredientLine("Соль – 1 ч.л.")
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if parsed.Name != "Соль" {
		t.Fatalf("unexpected name: %q", parsed.Name)
	}
	if parsed.Quantity != "1" {
		t.Fatalf("unexpected quantity: %q", parsed.Quantity)
	}
	if parsed.Unit != "ч.л." {
		t.Fatalf("unexpected unit: %q", parsed.Unit)
	}
}

func TestParseIngredientLineDecimalComma(t *testing.T) {
	t.Parallel()

	parsed, ok := parseIngredientLine("500,5 г муки")
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if parsed.Quantity != "500.5" {
		t.Fatalf("expected quantity 500.5, got %q", parsed.Quantity)
	}
	if parsed.Unit != "г" || parsed.Name != "муки" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseIngredientLineQuantityFirstWins(t *testing.T) {
	t.Parallel()

	// Matches both shapes; the quantity-first reading must win.
	parsed, ok := parseIngredientLine("2 шт — 400 г")
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if parsed.Quantity != "2" || parsed.Unit != "шт" {
		t.Fatalf("expected quantity-first interpretation, got %+v", parsed)
	}
}

func TestParseIngredientLineWholeLineFallback(t *testing.T) {
	t.Parallel()

	parsed, ok := parseIngredientLine("свежая зелень")
	if !ok {
		t.Fatalf("expected fallback to keep the line")
	}
	if parsed.Name != "свежая зелень" || parsed.Quantity != "1" || parsed.Unit != "шт" {
		t.Fatalf("unexpected fallback result: %+v", parsed)
	}
}

func TestParseIngredientLineDropsShortLines(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", " ", "и", "до"} {
		if _, ok := parseIngredientLine(line); ok {
			t.Fatalf("expected %q to be dropped", line)
		}
	}
}

func TestNormalizeUnitIdempotent(t *testing.T) {
	t.Parallel()

	for _, unit := range []string{"г", "мл", "кг", "л", "шт", "ст.л.", "ч.л.", "стакан"} {
		if got := normalizeUnit(unit); got != unit {
			t.Fatalf("normalizeUnit(%q) = %q, want unchanged", unit, got)
		}
	}
}

func TestNormalizeUnitVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"гр":    "г",
		"грамм": "г",
		"Г":     "г",
		"литр":  "л",
		"штук":  "шт",
		"Ст.Л.": "ст.л.",
		"ст л":  "ст.л.",
		"ст.л":  "ст.л.",
		"ч л":   "ч.л.",
		"ч.л":   "ч.л.",
	}
	for in, want := range cases {
		if got := normalizeUnit(in); got != want {
			t.Fatalf("normalizeUnit(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeUnitPassthrough(t *testing.T) {
	t.Parallel()

	if got := normalizeUnit("пучок"); got != "пучок" {
		t.Fatalf("unknown unit should pass through, got %q", got)
	}
	if got := normalizeUnit(" пучок "); got != "пучок" {
		t.Fatalf("passthrough should trim, got %q", got)
	}
}
