package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartmeal/internal/recipe"
)

// DefaultURL is the chat completions endpoint of a local OpenAI-compatible server.
const DefaultURL = "http://localhost:1234/v1/chat/completions"

const (
	defaultModel = "gemma-3-12b-it:2"
	systemPrompt = "You are a friendly cook. Answer in at most two short sentences."
)

// ErrEmptyReply is returned when the server answers without any choices.
var ErrEmptyReply = errors.New("local llm returned no choices")

// Client talks to a local chat completions server.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient returns a Client. Empty arguments select DefaultURL and the default model.
func NewClient(apiURL, model string) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{Timeout: 45 * time.Second},
		apiURL:     apiURL,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// MoodNote writes a short note on why the recipe suits the mood.
func (c *Client) MoodNote(ctx context.Context, mood, flavor string, d *recipe.Detail) (string, error) {
	reply, err := c.complete(ctx, recipe.NotePrompt(mood, flavor, d))
	if err != nil {
		return "", fmt.Errorf("local llm mood note: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// complete sends prompt as a single user turn and returns the first reply.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
