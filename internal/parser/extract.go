package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"RecipeKeeper/internal/domain"
)

const (
	placeholderTitle        = "Рецепт без названия"
	placeholderDescription  = "Описание отсутствует"
	placeholderInstructions = "Инструкции отсутствуют"

	defaultCookingTime = 30
	defaultServings    = 4

	minStepLength = 10
)

// Each extractor walks its selector list in order and keeps the first hit;
// structured markup (itemprop, conventional class names) outranks generic
// tag fallbacks.
var (
	titleSelectors = []string{
		"h1.recipe-title",
		`h1[itemprop="name"]`,
		"h1.entry-title",
		".recipe-header h1",
		"article h1",
		"h1",
	}

	descriptionSelectors = []string{
		"div.recipe-description",
		`div[itemprop="description"]`,
		`meta[name="description"]`,
		`meta[property="og:description"]`,
		".recipe-intro",
		"article p:first-of-type",
	}

	instructionSelectors = []string{
		"div.recipe-instructions",
		`div[itemprop="recipeInstructions"]`,
		"ol.recipe-steps",
		"div.instructions",
		".recipe-directions",
	}

	timeSelectors = []string{
		`time[itemprop="totalTime"]`,
		"span.cooking-time",
		".recipe-time",
	}

	servingSelectors = []string{
		`span[itemprop="recipeYield"]`,
		".recipe-servings",
		".servings",
	}

	ingredientContainerSelectors = []string{
		"ul.recipe-ingredients",
		`ul[itemprop="recipeIngredient"]`,
		"div.ingredients ul",
		".ingredient-list",
	}
)

var (
	titleSuffixExpr     = regexp.MustCompile(`\s*[|–-]\s*.+$`)
	digitsExpr          = regexp.MustCompile(`\d+`)
	minutesExpr         = regexp.MustCompile(`(\d+)\s*мин`)
	servingsExpr        = regexp.MustCompile(`(\d+)\s*порц`)
	instructionsExpr    = regexp.MustCompile(`(?is)(?:Приготовление|Инструкция|Способ приготовления)[:\s]+(.*?)(?:Ингредиенты|$)`)
	ingredientClassExpr = regexp.MustCompile(`ingredient`)
)

// extractTitle tries structured selectors, then the title tag with any
// trailing site-name suffix stripped, then the generic placeholder. A page
// whose first heading is unrelated to the recipe wins over the title tag;
// that ordering is intentional.
func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return strings.TrimSpace(node.Text())
		}
	}

	if node := doc.Find("title").First(); node.Length() > 0 {
		title := strings.TrimSpace(node.Text())
		return titleSuffixExpr.ReplaceAllString(title, "")
	}

	return placeholderTitle
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range descriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if strings.HasPrefix(sel, "meta") {
			// A present, non-empty content attribute wins even when it
			// trims to nothing; only an absent or empty one falls through.
			if content, ok := node.Attr("content"); ok && content != "" {
				return strings.TrimSpace(content)
			}
			continue
		}
		return strings.TrimSpace(node.Text())
	}

	if p := doc.Find("p").First(); p.Length() > 0 {
		return strings.TrimSpace(p.Text())
	}

	return placeholderDescription
}

// extractInstructions numbers each list item or paragraph of the first
// matching container, skipping trivially short entries. Without a
// structured container it scans the whole page text for a preparation
// heading and takes everything up to the ingredients section.
func extractInstructions(doc *goquery.Document) string {
	for _, sel := range instructionSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		var steps []string
		container.Find("li, p").Each(func(_ int, item *goquery.Selection) {
			text := strings.TrimSpace(item.Text())
			if utf8.RuneCountInString(text) > minStepLength {
				steps = append(steps, fmt.Sprintf("%d. %s", len(steps)+1, text))
			}
		})
		if len(steps) > 0 {
			return strings.Join(steps, "\n")
		}
	}

	if m := instructionsExpr.FindStringSubmatch(doc.Text()); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			return text
		}
	}

	return placeholderInstructions
}

// extractIngredients locates a structured ingredient container and parses
// each list item. Containers that parse to nothing do not stop the chain.
// The class-attribute scan is the last real attempt; after that two
// synthetic placeholders keep the result non-empty.
func extractIngredients(doc *goquery.Document) []domain.ParsedIngredient {
	for _, sel := range ingredientContainerSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		var items []domain.ParsedIngredient
		container.Find("li").Each(func(_ int, li *goquery.Selection) {
			if parsed, ok := parseIngredientLine(li.Text()); ok {
				items = append(items, parsed)
			}
		})
		if len(items) > 0 {
			return items
		}
	}

	var items []domain.ParsedIngredient
	doc.Find("li, p").Each(func(_ int, node *goquery.Selection) {
		if !ingredientClassExpr.MatchString(node.AttrOr("class", "")) {
			return
		}
		if parsed, ok := parseIngredientLine(node.Text()); ok {
			items = append(items, parsed)
		}
	})
	if len(items) > 0 {
		return items
	}

	return []domain.ParsedIngredient{
		{Name: "Ингредиент 1", Quantity: "100", Unit: "г"},
		{Name: "Ингредиент 2", Quantity: "200", Unit: "мл"},
	}
}

func extractCookingTime(doc *goquery.Document) int {
	if v, ok := firstNumber(doc, timeSelectors); ok {
		return v
	}
	if m := minutesExpr.FindStringSubmatch(doc.Text()); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return defaultCookingTime
}

func extractServings(doc *goquery.Document) int {
	if v, ok := firstNumber(doc, servingSelectors); ok {
		return v
	}
	if m := servingsExpr.FindStringSubmatch(doc.Text()); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return defaultServings
}

// firstNumber returns the first run of digits found among the selector
// matches.
func firstNumber(doc *goquery.Document, selectors []string) (int, bool) {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if m := digitsExpr.FindString(node.Text()); m != "" {
			if v, err := strconv.Atoi(m); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
