package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"smartmeal/internal/platform/spoonacular"
	"smartmeal/internal/recipe"
)

func TestNewResultView_Fallbacks(t *testing.T) {
	v := newResultView(recipe.Summary{ID: 4}, "")
	assert.Equal(t, untitledRecipe, v.Title)
	assert.Equal(t, notAvailable, v.ReadyIn)
	assert.Equal(t, notAvailable, v.Servings)
	assert.Equal(t, "/recipes/4/panel", v.PanelURL)

	ready, servings := 25, 3
	v = newResultView(recipe.Summary{ID: 4, Title: "Bulgogi", ReadyInMinutes: &ready, Servings: &servings}, "Lazy & Tired")
	assert.Equal(t, "Bulgogi", v.Title)
	assert.Equal(t, "25 min", v.ReadyIn)
	assert.Equal(t, "3", v.Servings)
	assert.Equal(t, "/recipes/4/panel?mood=Lazy+%26+Tired", v.PanelURL)
}

func TestTemplates_PanelFallbacks(t *testing.T) {
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, "panel.html", newPanelView(&recipe.Detail{ID: 1}))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No ingredients listed.")
	assert.Contains(t, buf.String(), "No detailed instructions available.")
}

func TestErrorStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewHandler(nil, nil, nil, zap.New(core))

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusRequestTimeout, msgTimeout},
		{&storeError{err: errors.New("dial postgres://app:hunter2@db")}, http.StatusInternalServerError, msgStore},
		{spoonacular.ErrMissingAPIKey, http.StatusBadGateway, msgAPIKey},
		{&spoonacular.APIError{StatusCode: http.StatusUnauthorized}, http.StatusBadGateway, msgAPIKey},
		{&spoonacular.APIError{StatusCode: http.StatusNotFound, Message: "no such recipe"}, http.StatusNotFound, msgNotFound},
		{errors.New(`Get "https://api.spoonacular.com/x?apiKey=k": connection reset`), http.StatusBadGateway, msgUnavailable},
	}
	for _, tt := range tests {
		code, msg := h.errorStatus(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg)
	}

	require.Equal(t, len(tests), logs.Len())
	last := logs.All()[len(tests)-1]
	assert.Contains(t, last.ContextMap()["error"], "apiKey=k")
}

func TestAllowedImageURL(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	assert.True(t, h.allowedImageURL("https://img.spoonacular.com/recipes/1-312x231.jpg"))
	assert.True(t, h.allowedImageURL("https://spoonacular.com/recipeImages/1.jpg"))
	assert.False(t, h.allowedImageURL("https://spoonacular.com.evil.test/1.jpg"))
	assert.False(t, h.allowedImageURL("javascript:alert(1)"))
	assert.False(t, h.allowedImageURL("%zz"))
}

func TestGenerateURLHash(t *testing.T) {
	a := GenerateURLHash("https://img.spoonacular.com/a.jpg")
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateURLHash("https://img.spoonacular.com/a.jpg"))
	assert.NotEqual(t, a, GenerateURLHash("https://img.spoonacular.com/b.jpg"))
}
