package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const borschPage = `
<html>
<head><title>Борщ рецепт | CookSite</title></head>
<body>
  <p>Время приготовления: 45 мин</p>
  <p>4 порции</p>
  <ul class="ingredient-list">
    <li>500 г свеклы</li>
    <li>Соль – 1 ч.л.</li>
  </ul>
</body>
</html>`

func TestImportEndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(borschPage))
	}))
	defer server.Close()

	importer := NewSiteImporter(server.Client(), nil)

	recipe, err := importer.Import(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}

	if recipe.Title != "Борщ рецепт" {
		t.Fatalf("unexpected title: %q", recipe.Title)
	}
	if recipe.CookingTime != 45 {
		t.Fatalf("unexpected cooking time: %d", recipe.CookingTime)
	}
	if recipe.Servings != 4 {
		t.Fatalf("unexpected servings: %d", recipe.Servings)
	}

	if len(recipe.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(recipe.Ingredients))
	}
	first := recipe.Ingredients[0]
	if first.Name != "свеклы" || first.Quantity != "500" || first.Unit != "г" {
		t.Fatalf("unexpected first ingredient: %+v", first)
	}
	second := recipe.Ingredients[1]
	if second.Name != "Соль" || second.Quantity != "1" || second.Unit != "ч.л." {
		t.Fatalf("unexpected second ingredient: %+v", second)
	}
}

func TestImportFailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		importer := NewSiteImporter(server.Client(), nil)
		recipe, err := importer.Import(context.Background(), server.URL)
		server.Close()

		if !errors.Is(err, ErrPageUnavailable) {
			t.Fatalf("status %d: expected ErrPageUnavailable, got %v", status, err)
		}
		if recipe.Title != "" || len(recipe.Ingredients) != 0 {
			t.Fatalf("status %d: expected no partial record, got %+v", status, recipe)
		}
	}
}

func TestImportFailsOnTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	importer := NewSiteImporter(&http.Client{Timeout: 30 * time.Millisecond}, nil)

	if _, err := importer.Import(context.Background(), server.URL); !errors.Is(err, ErrPageUnavailable) {
		t.Fatalf("expected ErrPageUnavailable, got %v", err)
	}
}

func TestImportFailsWithoutTitle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>страница без рецепта</div></body></html>`))
	}))
	defer server.Close()

	importer := NewSiteImporter(server.Client(), nil)

	if _, err := importer.Import(context.Background(), server.URL); !errors.Is(err, ErrNoRecipe) {
		t.Fatalf("expected ErrNoRecipe, got %v", err)
	}
}

func TestImportSucceedsWithGarbageBody(t *testing.T) {
	t.Parallel()

	// Garbage markup that still carries a title must produce a full record
	// with placeholder ingredients.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Окрошка</title></head><body><<<мусор>>></body></html>`))
	}))
	defer server.Close()

	importer := NewSiteImporter(server.Client(), nil)

	recipe, err := importer.Import(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if recipe.Title != "Окрошка" {
		t.Fatalf("unexpected title: %q", recipe.Title)
	}
	if len(recipe.Ingredients) < 2 {
		t.Fatalf("expected placeholder ingredients, got %+v", recipe.Ingredients)
	}
	if recipe.CookingTime != defaultCookingTime || recipe.Servings != defaultServings {
		t.Fatalf("expected defaults, got time=%d servings=%d", recipe.CookingTime, recipe.Servings)
	}
}
