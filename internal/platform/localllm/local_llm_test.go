package localllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmeal/internal/recipe"
)

func TestMoodNote(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Warm and filling.  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model")
	note, err := c.MoodNote(context.Background(), "Tired", "comfort", &recipe.Detail{Title: "Mac and Cheese"})
	require.NoError(t, err)

	assert.Equal(t, "Warm and filling.", note)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, `"Mac and Cheese"`)
	assert.Contains(t, got.Messages[1].Content, "comfort")
}

func TestMoodNote_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := &recipe.Detail{Title: "Soup"}

	_, err := NewClient(srv.URL+"/down", "").MoodNote(context.Background(), "Sad", "comfort", d)
	assert.ErrorContains(t, err, "status 503: model loading")

	_, err = NewClient(srv.URL+"/empty", "").MoodNote(context.Background(), "Sad", "comfort", d)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "")
	assert.Equal(t, DefaultURL, c.apiURL)
	assert.Equal(t, defaultModel, c.model)
}
