package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"RecipeKeeper/internal/domain"
)

// unitAlternation recognizes the unit vocabulary with loose tails, so
// declensions like "стакана" or "штуки" still match.
const unitAlternation = `г|мл|кг|л|шт|ст\.?\s*л\.?|ч\.?\s*л\.?|стакан\p{L}*|штук\p{L}*`

var (
	quantityFirstExpr = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(` + unitAlternation + `)\.?\s*[–—-]?\s*(.+)`)
	nameFirstExpr     = regexp.MustCompile(`(?i)^(.+?)\s*[–—-]\s*(\d+(?:[.,]\d+)?)\s*(` + unitAlternation + `)`)
)

// parseIngredientLine splits one free-text ingredient line into name,
// quantity and unit. Pattern order matters: the quantity-first shape wins
// over name-first on lines matching both. A line that matches neither but
// still carries more than two runes becomes a whole-line name with a
// synthetic quantity; anything shorter is dropped.
func parseIngredientLine(text string) (domain.ParsedIngredient, bool) {
	text = strings.TrimSpace(text)

	if m := quantityFirstExpr.FindStringSubmatch(text); m != nil {
		return newParsedIngredient(m[3], m[1], m[2]), true
	}
	if m := nameFirstExpr.FindStringSubmatch(text); m != nil {
		return newParsedIngredient(m[1], m[2], m[3]), true
	}

	if utf8.RuneCountInString(text) > 2 {
		return domain.ParsedIngredient{Name: text, Quantity: "1", Unit: "шт"}, true
	}

	return domain.ParsedIngredient{}, false
}

// newParsedIngredient keeps the quantity as text so source values survive
// exactly; only the decimal comma is rewritten to a point.
func newParsedIngredient(name, quantity, unit string) domain.ParsedIngredient {
	return domain.ParsedIngredient{
		Name:     strings.TrimSpace(name),
		Quantity: strings.ReplaceAll(quantity, ",", "."),
		Unit:     normalizeUnit(strings.TrimSpace(unit)),
	}
}

var canonicalUnits = map[string]string{
	"г":      "г",
	"гр":     "г",
	"грамм":  "г",
	"мл":     "мл",
	"кг":     "кг",
	"л":      "л",
	"литр":   "л",
	"шт":     "шт",
	"штук":   "шт",
	"стл":    "ст.л.",
	"чл":     "ч.л.",
	"стакан": "стакан",
}

var unitFolder = strings.NewReplacer(".", "", " ", "")

// normalizeUnit maps a unit spelling to its canonical form, ignoring case,
// internal periods and spaces. Unknown units pass through trimmed, never
// erroring; canonical input comes back unchanged.
func normalizeUnit(unit string) string {
	folded := unitFolder.Replace(strings.ToLower(unit))
	if canonical, ok := canonicalUnits[folded]; ok {
		return canonical
	}
	return strings.TrimSpace(unit)
}
