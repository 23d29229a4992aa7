// Package xai is the fallback search backend: xAI's chat completions API
// with live search scoped to X posts.
package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

const defaultBaseURL = "https://api.x.ai/v1"

// Client talks to the xAI API.
type Client struct {
	APIKey     string
	Model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a client. Model may be empty, in which case SelectModel
// should be called before Search.
func New(apiKey, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		baseURL: defaultBaseURL,
	}
}

// NewWithClient creates a client with a custom HTTP client and base URL (for testing).
func NewWithClient(apiKey, model, baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// ID identifies the backend and model for logging.
func (c *Client) ID() string {
	return "xai:" + c.Model
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []chatMessage    `json:"messages"`
	SearchParameters searchParameters `json:"search_parameters"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type searchParameters struct {
	Mode             string         `json:"mode"`
	FromDate         string         `json:"from_date"`
	ToDate           string         `json:"to_date"`
	MaxSearchResults int            `json:"max_search_results"`
	ReturnCitations  bool           `json:"return_citations"`
	Sources          []searchSource `json:"sources"`
}

type searchSource struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Search implements search.Searcher via xAI live search.
func (c *Client) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("xAI API key not provided (set XAI_API_KEY)")
	}
	if c.Model == "" {
		return nil, fmt.Errorf("xAI model not selected")
	}

	prompt := fmt.Sprintf(
		"Search X for recent posts about %q between %s and %s. "+
			"Summarize what people are saying and quote notable posts.",
		q.Topic, q.FromDate(), q.ToDate())

	body, err := json.Marshal(chatRequest{
		Model:    c.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		SearchParameters: searchParameters{
			Mode:             "on",
			FromDate:         q.FromDate(),
			ToDate:           q.ToDate(),
			MaxSearchResults: q.Depth.MaxResults(),
			ReturnCitations:  true,
			Sources:          []searchSource{{Type: "x"}},
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after read

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("xAI API returned status: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, err
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("xAI API returned no choices")
	}

	res := &search.Result{
		Source:   search.SourceXAI,
		Topic:    q.Topic,
		FromDate: q.FromDate(),
		ToDate:   q.ToDate(),
		Summary:  chatResp.Choices[0].Message.Content,
	}
	for _, url := range chatResp.Citations {
		res.Posts = append(res.Posts, search.Post{URL: url})
	}
	return res, nil
}

func (c *Client) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}
