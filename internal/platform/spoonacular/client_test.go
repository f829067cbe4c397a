package spoonacular

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmeal/internal/recipe"
)

func TestSearchRecipes(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":1,"title":"Pancakes","image":"https://img/1.jpg","readyInMinutes":20,"servings":2},{"id":2,"title":"Waffles"}],"totalResults":2}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	q := recipe.NewSearchQuery(recipe.Preferences{Mood: "Happy", MaxTime: 30, Cuisine: "Any"})

	results, err := c.SearchRecipes(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "/recipes/complexSearch", got.URL.Path)
	assert.Equal(t, "secret", got.URL.Query().Get("apiKey"))
	assert.Equal(t, "sweet", got.URL.Query().Get("query"))
	assert.Equal(t, "30", got.URL.Query().Get("maxReadyTime"))
	assert.Equal(t, "5", got.URL.Query().Get("number"))
	assert.Equal(t, "true", got.URL.Query().Get("addRecipeInformation"))
	assert.False(t, got.URL.Query().Has("cuisine"))

	assert.Equal(t, "Pancakes", results[0].Title)
	require.NotNil(t, results[0].ReadyInMinutes)
	assert.Equal(t, 20, *results[0].ReadyInMinutes)
	assert.Nil(t, results[1].Servings)
}

func TestSearchRecipes_NoResultsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	results, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchRecipes_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"failure","code":401,"message":"You are not authorized."}`))
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL))
	_, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "You are not authorized.", apiErr.Message)
}

func TestSearchRecipes_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	_, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestSearchRecipes_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	_, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})
	assert.ErrorContains(t, err, "failed to decode response body")
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = c.GetRecipeDetails(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGetRecipeDetails(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"title":"Bibimbap","extendedIngredients":[{"original":"1 cup rice"}],"analyzedInstructions":[{"name":"","steps":[{"number":1,"step":"Cook rice."}]}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL+"/"))
	d, err := c.GetRecipeDetails(context.Background(), 715538)
	require.NoError(t, err)

	assert.Equal(t, "/recipes/715538/information", path)
	assert.Equal(t, 715538, d.ID)
	assert.Equal(t, []string{"1 cup rice"}, d.IngredientLines())
	require.Len(t, d.Steps(), 1)
	assert.Equal(t, "Cook rice.", d.Steps()[0].Step)
}

func TestGetRecipeDetails_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetRecipeDetails(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("imagebytes"))
	}))
	defer srv.Close()

	c := NewClient("")
	data, err := c.FetchImage(context.Background(), srv.URL+"/ok.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("imagebytes"), data)

	_, err = c.FetchImage(context.Background(), srv.URL+"/missing.jpg")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSearchRecipes_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient("SUPER-SECRET-KEY", WithBaseURL(srv.URL))
	_, err := c.SearchRecipes(context.Background(), recipe.SearchQuery{Query: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
	assert.NotContains(t, err.Error(), "apiKey")
	assert.Contains(t, err.Error(), "/recipes/complexSearch")

	_, err = c.GetRecipeDetails(context.Background(), 7)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
}

func TestFetchImage_Redirects(t *testing.T) {
	var offHostHits int
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offHostHits++
		w.Write([]byte("elsewhere"))
	}))
	defer other.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moved.jpg":
			http.Redirect(w, r, "/ok.jpg", http.StatusFound)
		case "/away.jpg":
			http.Redirect(w, r, other.URL+"/x.jpg", http.StatusFound)
		default:
			w.Write([]byte("imagebytes"))
		}
	}))
	defer srv.Close()

	c := NewClient("")
	data, err := c.FetchImage(context.Background(), srv.URL+"/moved.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("imagebytes"), data)

	_, err = c.FetchImage(context.Background(), srv.URL+"/away.jpg")
	assert.ErrorIs(t, err, ErrRedirectHost)
	assert.Zero(t, offHostHits)
}
