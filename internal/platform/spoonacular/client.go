package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartmeal/internal/recipe"
)

// DefaultBaseURL is the public Spoonacular API.
const DefaultBaseURL = "https://api.spoonacular.com"

// maxImageBytes bounds image downloads for thumbnailing.
const maxImageBytes = 10 << 20

var (
	// ErrMissingAPIKey is returned when the client was built without a key.
	ErrMissingAPIKey = errors.New("spoonacular api key is not configured")
	// ErrUnauthorized matches an APIError with status 401.
	ErrUnauthorized = errors.New("spoonacular rejected the api key")
	// ErrRedirectHost is returned when an image download redirects off its host.
	ErrRedirectHost = errors.New("image redirected to another host")
)

// maxImageRedirects bounds same-host redirects on image downloads.
const maxImageRedirects = 5

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spoonacular: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spoonacular: status %d", e.StatusCode)
}

// Is reports whether target is ErrUnauthorized and the status was 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client is a client for the Spoonacular recipe API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Spoonacular client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results      []recipe.Summary `json:"results"`
	TotalResults int              `json:"totalResults"`
}

// SearchRecipes calls the complexSearch endpoint.
func (c *Client) SearchRecipes(ctx context.Context, q recipe.SearchQuery) ([]recipe.Summary, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, "/recipes/complexSearch", q.Values(), &resp); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	if resp.Results == nil {
		return []recipe.Summary{}, nil
	}
	return resp.Results, nil
}

// GetRecipeDetails fetches the full information for a single recipe.
func (c *Client) GetRecipeDetails(ctx context.Context, id int) (*recipe.Detail, error) {
	var d recipe.Detail
	path := "/recipes/" + strconv.Itoa(id) + "/information"
	if err := c.getJSON(ctx, path, url.Values{}, &d); err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	if d.ID == 0 {
		d.ID = id
	}
	return &d, nil
}

// FetchImage downloads a recipe image. Image URLs are public and need no key.
// Redirects are followed only while they stay on the original host.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	hc := *c.httpClient
	hc.CheckRedirect = sameHostRedirect
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", path, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func sameHostRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxImageRedirects {
		return fmt.Errorf("stopped after %d redirects", maxImageRedirects)
	}
	if !strings.EqualFold(req.URL.Host, via[0].URL.Host) {
		return ErrRedirectHost
	}
	return nil
}

// stripURL drops the request URL that net/http attaches to transport errors.
// API request URLs carry the key in their query string.
func stripURL(err error) error {
	var uErr *url.Error
	if errors.As(err, &uErr) {
		return uErr.Err
	}
	return err
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
