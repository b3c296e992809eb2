package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/infrastructure/storage"
	"RecipeKeeper/internal/parser"
	"RecipeKeeper/internal/ports"
	"RecipeKeeper/internal/usecase"
)

const (
	defaultSimilarLimit  = 5
	defaultTopIngredient = 10
)

// Handlers is the thin JSON surface over the import and storage layers.
type Handlers struct {
	importer    *usecase.Importer
	recommender *usecase.Recommender
	recipes     ports.RecipeRepository
	shopping    ports.ShoppingListRepository
	stats       ports.StatsRepository
	logger      *slog.Logger
}

// HandlerDeps wires the collaborators the API exposes.
type HandlerDeps struct {
	Importer    *usecase.Importer
	Recommender *usecase.Recommender
	Recipes     ports.RecipeRepository
	Shopping    ports.ShoppingListRepository
	Stats       ports.StatsRepository
	Logger      *slog.Logger
}

// NewHandlers constructs the API handlers.
func NewHandlers(deps HandlerDeps) *Handlers {
	return &Handlers{
		importer:    deps.Importer,
		recommender: deps.Recommender,
		recipes:     deps.Recipes,
		shopping:    deps.Shopping,
		stats:       deps.Stats,
		logger:      deps.Logger,
	}
}

// Routes mounts every API endpoint on the router.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/import", h.handleImport)

	r.Get("/recipes", h.handleListRecipes)
	r.Post("/recipes", h.handleCreateRecipe)
	r.Get("/recipes/quick", h.handleQuickPicks)
	r.Get("/recipes/{id}", h.handleGetRecipe)
	r.Put("/recipes/{id}", h.handleUpdateRecipe)
	r.Delete("/recipes/{id}", h.handleDeleteRecipe)
	r.Get("/recipes/{id}/similar", h.handleSimilarRecipes)
	r.Post("/recipes/{id}/ingredients", h.handleAddIngredient)
	r.Delete("/recipes/{id}/ingredients/{ingredientID}", h.handleRemoveIngredient)
	r.Get("/search", h.handleSearch)

	r.Post("/shopping-list", h.handleShoppingAdd)
	r.Delete("/shopping-list", h.handleShoppingClear)
	r.Delete("/shopping-list/{recipeID}", h.handleShoppingRemove)
	r.Get("/shopping-list/summary", h.handleShoppingSummary)

	r.Get("/stats", h.handleRecipeStats)
	r.Get("/stats/ingredients", h.handleTopIngredients)
	r.Get("/stats/users/{id}", h.handleUserStats)
}

type importRequest struct {
	URL      string `json:"url"`
	AuthorID int64  `json:"author_id"`
}

func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.errorJSON(w, http.StatusBadRequest, "url is required")
		return
	}

	recipe, err := h.importer.ImportFromURL(r.Context(), req.URL, req.AuthorID)
	switch {
	case errors.Is(err, parser.ErrPageUnavailable), errors.Is(err, parser.ErrNoRecipe):
		h.errorJSON(w, http.StatusUnprocessableEntity, "could not import recipe, check the URL")
		return
	case err != nil:
		h.logError("import recipe", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusCreated, toRecipeResponse(recipe))
}

type ingredientPayload struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type recipePayload struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Instructions string              `json:"instructions"`
	AuthorID     int64               `json:"author_id"`
	CookingTime  int                 `json:"cooking_time"`
	Servings     int                 `json:"servings"`
	Ingredients  []ingredientPayload `json:"ingredients"`
}

func (h *Handlers) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorJSON(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" {
		h.errorJSON(w, http.StatusBadRequest, "title is required")
		return
	}

	recipe := domain.Recipe{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		AuthorID:     req.AuthorID,
		CookingTime:  req.CookingTime,
		Servings:     req.Servings,
	}
	for _, item := range req.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, domain.RecipeIngredient{
			Ingredient: domain.Ingredient{Name: item.Name, Unit: item.Unit},
			Quantity:   item.Quantity,
		})
	}

	stored, err := h.recipes.Create(r.Context(), recipe)
	if err != nil {
		h.logError("create recipe", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusCreated, toRecipeResponse(stored))
}

func (h *Handlers) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{
		AuthorID:       queryInt64(r, "author_id"),
		MaxCookingTime: queryInt(r, "max_time"),
		Limit:          queryInt(r, "limit"),
	}

	recipes, err := h.recipes.List(r.Context(), filter)
	if err != nil {
		h.logError("list recipes", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, toRecipeResponses(recipes))
}

func (h *Handlers) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.errorJSON(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err != nil {
		h.logError("get recipe", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, toRecipeResponse(recipe))
}

func (h *Handlers) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req recipePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorJSON(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" {
		h.errorJSON(w, http.StatusBadRequest, "title is required")
		return
	}

	recipe := domain.Recipe{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		CookingTime:  req.CookingTime,
		Servings:     req.Servings,
	}

	err := h.recipes.Update(r.Context(), recipe)
	if errors.Is(err, storage.ErrNotFound) {
		h.errorJSON(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err != nil {
		h.logError("update recipe", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.recipes.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.errorJSON(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err != nil {
		h.logError("delete recipe", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req ingredientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	link := domain.RecipeIngredient{
		Ingredient: domain.Ingredient{Name: req.Name, Unit: req.Unit},
		Quantity:   req.Quantity,
	}

	stored, err := h.recipes.AddIngredient(r.Context(), id, link)
	if err != nil {
		h.logError("add ingredient", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusCreated, ingredientResponse{
		ID:       stored.Ingredient.ID,
		Name:     stored.Ingredient.Name,
		Unit:     stored.Ingredient.Unit,
		Quantity: stored.Quantity,
	})
}

func (h *Handlers) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	ingredientID, ok := h.pathID(w, r, "ingredientID")
	if !ok {
		return
	}

	err := h.recipes.RemoveIngredient(r.Context(), id, ingredientID)
	if errors.Is(err, storage.ErrNotFound) {
		h.errorJSON(w, http.StatusNotFound, "ingredient not linked")
		return
	}
	if err != nil {
		h.logError("remove ingredient", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		h.errorJSON(w, http.StatusBadRequest, "q is required")
		return
	}

	recipes, err := h.recipes.Search(r.Context(), term)
	if err != nil {
		h.logError("search recipes", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, toRecipeResponses(recipes))
}

func (h *Handlers) handleSimilarRecipes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	limit := queryInt(r, "limit")
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	similar, err := h.recommender.Similar(r.Context(), id, limit)
	if err != nil {
		h.logError("similar recipes", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]similarResponse, 0, len(similar))
	for _, s := range similar {
		out = append(out, similarResponse{
			Recipe:            toRecipeResponse(s.Recipe),
			SharedIngredients: s.SharedIngredients,
			Score:             s.Score,
		})
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) handleQuickPicks(w http.ResponseWriter, r *http.Request) {
	maxTime := queryInt(r, "max_time")
	if maxTime <= 0 {
		h.errorJSON(w, http.StatusBadRequest, "max_time is required")
		return
	}

	recipes, err := h.recommender.QuickPicks(r.Context(), maxTime, queryInt(r, "limit"))
	if err != nil {
		h.logError("quick picks", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, toRecipeResponses(recipes))
}

type shoppingRequest struct {
	UserID   int64 `json:"user_id"`
	RecipeID int64 `json:"recipe_id"`
}

func (h *Handlers) handleShoppingAdd(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.RecipeID == 0 {
		h.errorJSON(w, http.StatusBadRequest, "user_id and recipe_id are required")
		return
	}

	if err := h.shopping.Add(r.Context(), req.UserID, req.RecipeID); err != nil {
		h.logError("add to shopping list", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleShoppingRemove(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := h.pathID(w, r, "recipeID")
	if !ok {
		return
	}
	userID := queryInt64(r, "user_id")
	if userID == 0 {
		h.errorJSON(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.shopping.Remove(r.Context(), userID, recipeID); err != nil {
		h.logError("remove from shopping list", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleShoppingClear(w http.ResponseWriter, r *http.Request) {
	userID := queryInt64(r, "user_id")
	if userID == 0 {
		h.errorJSON(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.shopping.Clear(r.Context(), userID); err != nil {
		h.logError("clear shopping list", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleShoppingSummary(w http.ResponseWriter, r *http.Request) {
	userID := queryInt64(r, "user_id")
	if userID == 0 {
		h.errorJSON(w, http.StatusBadRequest, "user_id is required")
		return
	}

	items, err := h.shopping.Summary(r.Context(), userID)
	if err != nil {
		h.logError("shopping summary", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]shoppingItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, shoppingItemResponse{Name: item.Name, Unit: item.Unit, Quantity: item.Quantity})
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) handleRecipeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.RecipeStats(r.Context())
	if err != nil {
		h.logError("recipe stats", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, recipeStatsResponse{
		TotalRecipes:   stats.TotalRecipes,
		AvgCookingTime: stats.AvgCookingTime,
		MaxCookingTime: stats.MaxCookingTime,
		MinCookingTime: stats.MinCookingTime,
		AvgServings:    stats.AvgServings,
	})
}

func (h *Handlers) handleTopIngredients(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	if limit <= 0 {
		limit = defaultTopIngredient
	}

	usages, err := h.stats.TopIngredients(r.Context(), limit)
	if err != nil {
		h.logError("top ingredients", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]ingredientUsageResponse, 0, len(usages))
	for _, usage := range usages {
		out = append(out, ingredientUsageResponse{
			ID:         usage.Ingredient.ID,
			Name:       usage.Ingredient.Name,
			Unit:       usage.Ingredient.Unit,
			UsageCount: usage.UsageCount,
		})
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.stats.UserStats(r.Context(), id)
	if err != nil {
		h.logError("user stats", err)
		h.errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.respondJSON(w, http.StatusOK, userStatsResponse{
		TotalRecipes:   stats.TotalRecipes,
		AvgCookingTime: stats.AvgCookingTime,
		RecentRecipes:  stats.RecentRecipes,
	})
}

type recipeResponse struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	AuthorID     int64                `json:"author_id"`
	CookingTime  int                  `json:"cooking_time"`
	Servings     int                  `json:"servings"`
	SourceURL    string               `json:"source_url,omitempty"`
	Ingredients  []ingredientResponse `json:"ingredients,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type ingredientResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type similarResponse struct {
	Recipe            recipeResponse `json:"recipe"`
	SharedIngredients int            `json:"shared_ingredients"`
	Score             float64        `json:"score"`
}

type shoppingItemResponse struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type recipeStatsResponse struct {
	TotalRecipes   int     `json:"total_recipes"`
	AvgCookingTime float64 `json:"avg_cooking_time"`
	MaxCookingTime int     `json:"max_cooking_time"`
	MinCookingTime int     `json:"min_cooking_time"`
	AvgServings    float64 `json:"avg_servings"`
}

type ingredientUsageResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	UsageCount int    `json:"usage_count"`
}

type userStatsResponse struct {
	TotalRecipes   int     `json:"total_recipes"`
	AvgCookingTime float64 `json:"avg_cooking_time"`
	RecentRecipes  int     `json:"recent_recipes"`
}

func toRecipeResponse(recipe domain.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:           recipe.ID,
		Title:        recipe.Title,
		Description:  recipe.Description,
		Instructions: recipe.Instructions,
		AuthorID:     recipe.AuthorID,
		CookingTime:  recipe.CookingTime,
		Servings:     recipe.Servings,
		SourceURL:    recipe.SourceURL,
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
	}
	for _, link := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, ingredientResponse{
			ID:       link.Ingredient.ID,
			Name:     link.Ingredient.Name,
			Unit:     link.Ingredient.Unit,
			Quantity: link.Quantity,
		})
	}
	return resp
}

func toRecipeResponses(recipes []domain.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, toRecipeResponse(recipe))
	}
	return out
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logError("encode response", err)
	}
}

func (h *Handlers) errorJSON(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.errorJSON(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, "error", err)
	}
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func queryInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}
