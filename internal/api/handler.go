package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smartmeal/internal/platform/spoonacular"
	"smartmeal/internal/recipe"
)

// NoResultsMessage is shown when a search returns no recipes.
const NoResultsMessage = "No recipes found. Try different keywords or increase max time."

const (
	searchTimeout    = 15 * time.Second
	detailTimeout    = 15 * time.Second
	noteTimeout      = 10 * time.Second
	thumbnailTimeout = 20 * time.Second
)

// RecipeSearcher defines the interface for interacting with the recipe API.
type RecipeSearcher interface {
	SearchRecipes(ctx context.Context, q recipe.SearchQuery) ([]recipe.Summary, error)
	GetRecipeDetails(ctx context.Context, id int) (*recipe.Detail, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// RecipeStore defines the interface for recipe data operations.
type RecipeStore interface {
	GetDetail(ctx context.Context, id int) (*recipe.Detail, error)
	SaveDetail(ctx context.Context, detail *recipe.Detail) error
	SaveSearch(ctx context.Context, search *recipe.Search) error
	RecentSearches(ctx context.Context, limit int) ([]*recipe.Search, error)
}

// NoteWriter defines the interface for LLM clients that explain a recipe choice.
type NoteWriter interface {
	MoodNote(ctx context.Context, mood, flavor string, d *recipe.Detail) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Searcher RecipeSearcher
	Store    RecipeStore
	// Notes is optional; a nil NoteWriter disables mood notes.
	Notes NoteWriter
	Log   *zap.Logger

	ImageDir   string
	ImageHosts []string
}

// NewHandler creates a new Handler.
func NewHandler(searcher RecipeSearcher, store RecipeStore, notes NoteWriter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Searcher:   searcher,
		Store:      store,
		Notes:      notes,
		Log:        log,
		ImageDir:   "images",
		ImageHosts: []string{"spoonacular.com"},
	}
}

// Index renders the empty form.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPage(recipe.DefaultPreferences()))
}

// Search binds the form, queries the recipe API and renders the result list.
func (h *Handler) Search(c *gin.Context) {
	prefs := recipe.DefaultPreferences()
	if err := c.ShouldBindQuery(&prefs); err != nil {
		page := newPage(prefs)
		page.Error = fmt.Sprintf("Invalid preferences: %s", err.Error())
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	page := newPage(prefs)
	page.Searched = true
	page.Term = prefs.SearchTerm()
	page.Flavor = recipe.FlavorFor(prefs.Mood)

	results, err := h.search(c.Request.Context(), prefs)
	if err != nil {
		status, msg := h.errorStatus(err)
		page.Searched = false
		page.Error = msg
		c.HTML(status, "index.html", page)
		return
	}

	if len(results) == 0 {
		page.Warning = NoResultsMessage
	}
	page.Results = make([]resultView, 0, len(results))
	for _, s := range results {
		page.Results = append(page.Results, newResultView(s, prefs.Mood))
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// Panel renders the ingredients and instructions fragment for one recipe.
func (h *Handler) Panel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.HTML(http.StatusBadRequest, "panel.html", panelView{Error: "Invalid recipe id."})
		return
	}

	d, err := h.detail(c.Request.Context(), id)
	if err != nil {
		status, msg := h.errorStatus(err)
		c.HTML(status, "panel.html", panelView{Error: msg})
		return
	}

	view := newPanelView(d)
	if mood := c.Query("mood"); mood != "" {
		view.Note = h.note(c.Request.Context(), mood, d)
	}
	c.HTML(http.StatusOK, "panel.html", view)
}

// SearchRecipes is the JSON variant of Search.
func (h *Handler) SearchRecipes(c *gin.Context) {
	prefs := recipe.DefaultPreferences()
	if err := c.ShouldBindQuery(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.search(c.Request.Context(), prefs)
	if err != nil {
		status, msg := h.errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	resp := gin.H{
		"term":    prefs.SearchTerm(),
		"flavor":  recipe.FlavorFor(prefs.Mood),
		"results": results,
	}
	if len(results) == 0 {
		resp["message"] = NoResultsMessage
	}
	c.JSON(http.StatusOK, resp)
}

// GetRecipe returns one recipe detail as JSON, with a mood note when
// ?mood= is given and a note writer is configured.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	d, err := h.detail(c.Request.Context(), id)
	if err != nil {
		status, msg := h.errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	resp := gin.H{"recipe": d}
	if mood := c.Query("mood"); mood != "" {
		if note := h.note(c.Request.Context(), mood, d); note != "" {
			resp["note"] = note
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetSearches returns the most recent searches.
func (h *Handler) GetSearches(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, 100)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	searches, err := h.Store.RecentSearches(ctx, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Database query timed out after 5 seconds"})
			return
		}
		h.Log.Error("failed to list searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgStore})
		return
	}
	if searches == nil {
		searches = []*recipe.Search{}
	}
	c.JSON(http.StatusOK, searches)
}

// GetMoods returns the mood to flavor table and the selectable cuisines.
func (h *Handler) GetMoods(c *gin.Context) {
	type moodFlavor struct {
		Mood   recipe.Mood `json:"mood"`
		Flavor string      `json:"flavor"`
	}
	moods := make([]moodFlavor, 0, len(recipe.Moods()))
	for _, m := range recipe.Moods() {
		moods = append(moods, moodFlavor{Mood: m, Flavor: recipe.FlavorFor(string(m))})
	}
	c.JSON(http.StatusOK, gin.H{
		"moods":          moods,
		"default_flavor": recipe.DefaultFlavor,
		"cuisines":       recipe.Cuisines(),
	})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) search(ctx context.Context, prefs recipe.Preferences) ([]recipe.Summary, error) {
	q := recipe.NewSearchQuery(prefs)

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	h.Log.Info("searching recipes",
		zap.String("mood", prefs.Mood),
		zap.String("query", q.Query),
		zap.String("cuisine", q.Cuisine),
		zap.Int("max_ready_time", q.MaxReadyTime),
	)
	results, err := h.Searcher.SearchRecipes(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := h.Store.SaveSearch(ctx, recipe.NewSearch(prefs, len(results))); err != nil {
		h.Log.Warn("failed to save search", zap.Error(err))
	}
	return results, nil
}

// detail returns the cached recipe detail, fetching and caching it on a miss.
func (h *Handler) detail(ctx context.Context, id int) (*recipe.Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, detailTimeout)
	defer cancel()

	d, err := h.Store.GetDetail(ctx, id)
	if err != nil {
		return nil, &storeError{err: err}
	}
	if d != nil {
		h.Log.Debug("recipe detail found in store", zap.Int("id", id))
		return d, nil
	}

	h.Log.Debug("recipe detail not in store, calling recipe api", zap.Int("id", id))
	d, err = h.Searcher.GetRecipeDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := h.Store.SaveDetail(ctx, d); err != nil {
		h.Log.Warn("failed to save recipe detail", zap.Int("id", id), zap.Error(err))
	}
	return d, nil
}

// note asks the note writer for a mood note. Failures are logged and yield "".
func (h *Handler) note(ctx context.Context, mood string, d *recipe.Detail) string {
	if h.Notes == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, noteTimeout)
	defer cancel()

	note, err := h.Notes.MoodNote(ctx, mood, recipe.FlavorFor(mood), d)
	if err != nil {
		h.Log.Warn("failed to write mood note", zap.Int("id", d.ID), zap.Error(err))
		return ""
	}
	return note
}

type storeError struct {
	err error
}

func (e *storeError) Error() string { return "database error: " + e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// Messages shown to users when a lookup fails. Upstream error text never
// reaches the response; it can carry request URLs.
const (
	msgTimeout     = "The recipe service timed out. Please try again."
	msgStore       = "Recipe storage is unavailable. Please try again."
	msgAPIKey      = "The recipe service rejected our API key. Check SPOONACULAR_API_KEY."
	msgNotFound    = "Recipe not found."
	msgUnavailable = "The recipe service is unavailable."
)

// errorStatus maps a search, detail or store failure to an HTTP status and a
// fixed message fit for the user. The full error is logged.
func (h *Handler) errorStatus(err error) (int, string) {
	var (
		sErr   *storeError
		apiErr *spoonacular.APIError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.Log.Warn("recipe lookup timed out", zap.Error(err))
		return http.StatusRequestTimeout, msgTimeout
	case errors.As(err, &sErr):
		h.Log.Error("recipe store failed", zap.Error(err))
		return http.StatusInternalServerError, msgStore
	case errors.Is(err, spoonacular.ErrMissingAPIKey), errors.Is(err, spoonacular.ErrUnauthorized):
		h.Log.Error("recipe api rejected credentials", zap.Error(err))
		return http.StatusBadGateway, msgAPIKey
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		h.Log.Info("recipe not found upstream", zap.Error(err))
		return http.StatusNotFound, msgNotFound
	default:
		h.Log.Error("recipe api failed", zap.Error(err))
		return http.StatusBadGateway, msgUnavailable
	}
}
