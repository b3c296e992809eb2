package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/infrastructure/storage"
	"RecipeKeeper/internal/parser"
	"RecipeKeeper/internal/ports"
	"RecipeKeeper/internal/usecase"
)

type stubParser struct {
	recipe domain.ParsedRecipe
	err    error
}

func (s *stubParser) Import(ctx context.Context, pageURL string) (domain.ParsedRecipe, error) {
	return s.recipe, s.err
}

type stubRepo struct {
	recipes map[int64]domain.Recipe
	shared  map[int64]int
	nextID  int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{recipes: map[int64]domain.Recipe{}, shared: map[int64]int{}, nextID: 1}
}

func (s *stubRepo) Create(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	recipe.ID = s.nextID
	s.nextID++
	s.recipes[recipe.ID] = recipe
	return recipe, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (domain.Recipe, error) {
	recipe, ok := s.recipes[id]
	if !ok {
		return domain.Recipe{}, storage.ErrNotFound
	}
	return recipe, nil
}

func (s *stubRepo) List(ctx context.Context, filter ports.ListFilter) ([]domain.Recipe, error) {
	var out []domain.Recipe
	for _, recipe := range s.recipes {
		out = append(out, recipe)
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, recipe domain.Recipe) error {
	if _, ok := s.recipes[recipe.ID]; !ok {
		return storage.ErrNotFound
	}
	s.recipes[recipe.ID] = recipe
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.recipes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func (s *stubRepo) Search(ctx context.Context, term string) ([]domain.Recipe, error) {
	var out []domain.Recipe
	for _, recipe := range s.recipes {
		if strings.Contains(recipe.Title, term) {
			out = append(out, recipe)
		}
	}
	return out, nil
}

func (s *stubRepo) AddIngredient(ctx context.Context, recipeID int64, link domain.RecipeIngredient) (domain.RecipeIngredient, error) {
	recipe, ok := s.recipes[recipeID]
	if !ok {
		return domain.RecipeIngredient{}, storage.ErrNotFound
	}
	link.Ingredient.ID = int64(len(recipe.Ingredients) + 1)
	recipe.Ingredients = append(recipe.Ingredients, link)
	s.recipes[recipeID] = recipe
	return link, nil
}

func (s *stubRepo) RemoveIngredient(ctx context.Context, recipeID, ingredientID int64) error {
	recipe, ok := s.recipes[recipeID]
	if !ok {
		return storage.ErrNotFound
	}
	for i, link := range recipe.Ingredients {
		if link.Ingredient.ID == ingredientID {
			recipe.Ingredients = append(recipe.Ingredients[:i], recipe.Ingredients[i+1:]...)
			s.recipes[recipeID] = recipe
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *stubRepo) SharedIngredientCounts(ctx context.Context, recipeID int64) (map[int64]int, error) {
	return s.shared, nil
}

type stubShopping struct {
	items   []domain.ShoppingItem
	added   [][2]int64
	cleared []int64
}

func (s *stubShopping) Add(ctx context.Context, userID, recipeID int64) error {
	s.added = append(s.added, [2]int64{userID, recipeID})
	return nil
}

func (s *stubShopping) Remove(ctx context.Context, userID, recipeID int64) error { return nil }

func (s *stubShopping) Clear(ctx context.Context, userID int64) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

func (s *stubShopping) Summary(ctx context.Context, userID int64) ([]domain.ShoppingItem, error) {
	return s.items, nil
}

type stubStats struct{}

func (stubStats) RecipeStats(ctx context.Context) (domain.RecipeStats, error) {
	return domain.RecipeStats{TotalRecipes: 3, AvgCookingTime: 40, MaxCookingTime: 60, MinCookingTime: 20, AvgServings: 4}, nil
}

func (stubStats) TopIngredients(ctx context.Context, limit int) ([]domain.IngredientUsage, error) {
	return []domain.IngredientUsage{
		{Ingredient: domain.Ingredient{ID: 1, Name: "соль", Unit: "ч.л."}, UsageCount: 5},
	}, nil
}

func (stubStats) UserStats(ctx context.Context, userID int64) (domain.UserStats, error) {
	return domain.UserStats{TotalRecipes: 2, AvgCookingTime: 35, RecentRecipes: 1}, nil
}

func newTestRouter(p ports.RecipeImporter, repo *stubRepo, shopping *stubShopping) http.Handler {
	handlers := NewHandlers(HandlerDeps{
		Importer:    usecase.NewImporter(usecase.ImporterDeps{Parser: p, Recipes: repo}),
		Recommender: usecase.NewRecommender(repo),
		Recipes:     repo,
		Shopping:    shopping,
		Stats:       stubStats{},
	})

	router := chi.NewRouter()
	router.Route("/api", handlers.Routes)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleImportSuccess(t *testing.T) {
	t.Parallel()

	p := &stubParser{recipe: domain.ParsedRecipe{
		Title:       "Борщ",
		CookingTime: 45,
		Servings:    4,
		Ingredients: []domain.ParsedIngredient{{Name: "свекла", Quantity: "500", Unit: "г"}},
	}}
	router := newTestRouter(p, newStubRepo(), &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/import", `{"url":"https://cooksite.example/borsch","author_id":7}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp recipeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Борщ" || resp.AuthorID != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Ingredients) != 1 || resp.Ingredients[0].Quantity != "500" {
		t.Fatalf("unexpected ingredients: %+v", resp.Ingredients)
	}
}

func TestHandleImportNoRecipe(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubParser{err: parser.ErrNoRecipe}, newStubRepo(), &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/import", `{"url":"https://cooksite.example/empty"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleImportMissingURL(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubParser{}, newStubRepo(), &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/import", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecipeCRUD(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	router := newTestRouter(&stubParser{}, repo, &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/recipes",
		`{"title":"Щи","author_id":1,"cooking_time":50,"servings":4,"ingredients":[{"name":"капуста","unit":"г","quantity":"300"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/recipes/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/recipes/1", `{"title":"Щи кислые","cooking_time":55}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/recipes/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/recipes/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestCreateRecipeRequiresTitle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubParser{}, newStubRepo(), &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/recipes", `{"description":"без названия"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestShoppingListEndpoints(t *testing.T) {
	t.Parallel()

	shopping := &stubShopping{items: []domain.ShoppingItem{{Name: "свекла", Unit: "г", Quantity: "800"}}}
	router := newTestRouter(&stubParser{}, newStubRepo(), shopping)

	rec := doJSON(t, router, http.MethodPost, "/api/shopping-list", `{"user_id":3,"recipe_id":9}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("add: expected 204, got %d", rec.Code)
	}
	if len(shopping.added) != 1 || shopping.added[0] != [2]int64{3, 9} {
		t.Fatalf("unexpected add calls: %+v", shopping.added)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/shopping-list/summary?user_id=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", rec.Code)
	}

	var items []shoppingItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != "800" {
		t.Fatalf("unexpected summary: %+v", items)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/shopping-list/summary", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("summary without user: expected 400, got %d", rec.Code)
	}
}

func TestRecipeIngredientEndpoints(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.recipes[1] = domain.Recipe{ID: 1, Title: "Борщ"}
	repo.nextID = 2
	router := newTestRouter(&stubParser{}, repo, &stubShopping{})

	rec := doJSON(t, router, http.MethodPost, "/api/recipes/1/ingredients",
		`{"name":"морковь","unit":"г","quantity":"150"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var added ingredientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode added: %v", err)
	}
	if added.Name != "морковь" || added.Quantity != "150" {
		t.Fatalf("unexpected link: %+v", added)
	}
	if len(repo.recipes[1].Ingredients) != 1 {
		t.Fatalf("expected 1 link stored, got %d", len(repo.recipes[1].Ingredients))
	}

	rec = doJSON(t, router, http.MethodPost, "/api/recipes/1/ingredients", `{"unit":"г"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("add without name: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/recipes/1/ingredients/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", rec.Code)
	}
	if len(repo.recipes[1].Ingredients) != 0 {
		t.Fatalf("expected link removed, got %+v", repo.recipes[1].Ingredients)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/recipes/1/ingredients/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing: expected 404, got %d", rec.Code)
	}
}

func TestShoppingClearEndpoint(t *testing.T) {
	t.Parallel()

	shopping := &stubShopping{}
	router := newTestRouter(&stubParser{}, newStubRepo(), shopping)

	rec := doJSON(t, router, http.MethodDelete, "/api/shopping-list?user_id=3", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", rec.Code)
	}
	if len(shopping.cleared) != 1 || shopping.cleared[0] != 3 {
		t.Fatalf("unexpected clear calls: %+v", shopping.cleared)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/shopping-list", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("clear without user: expected 400, got %d", rec.Code)
	}
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubParser{}, newStubRepo(), &stubShopping{})

	rec := doJSON(t, router, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	var stats recipeStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalRecipes != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/stats/ingredients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ingredients: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/stats/users/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("user stats: expected 200, got %d", rec.Code)
	}
}

func TestSimilarRecipesEndpoint(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.recipes[1] = domain.Recipe{ID: 1, Title: "Борщ", CookingTime: 60}
	repo.recipes[2] = domain.Recipe{ID: 2, Title: "Щи", CookingTime: 55}
	repo.shared = map[int64]int{2: 2}
	repo.nextID = 3
	router := newTestRouter(&stubParser{}, repo, &stubShopping{})

	rec := doJSON(t, router, http.MethodGet, "/api/recipes/1/similar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var similar []similarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &similar); err != nil {
		t.Fatalf("decode similar: %v", err)
	}
	if len(similar) != 1 || similar[0].Recipe.ID != 2 || similar[0].SharedIngredients != 2 {
		t.Fatalf("unexpected similar: %+v", similar)
	}
}
