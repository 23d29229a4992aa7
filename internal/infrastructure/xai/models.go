package xai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// preferredModels in descending order of preference. The first one the
// account can use wins.
var preferredModels = []string{
	"grok-4-fast",
	"grok-4",
	"grok-3-mini",
	"grok-3",
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// SelectModel queries the API for available models and pins the client to
// the best grok model. No-op when a model is already set.
func (c *Client) SelectModel(ctx context.Context) error {
	if c.Model != "" {
		return nil
	}
	if c.APIKey == "" {
		return fmt.Errorf("xAI API key not provided (set XAI_API_KEY)")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after read

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xAI models endpoint returned status: %s", resp.Status)
	}

	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return err
	}

	available := make(map[string]bool, len(models.Data))
	for _, m := range models.Data {
		available[m.ID] = true
	}

	for _, want := range preferredModels {
		if available[want] {
			c.Model = want
			return nil
		}
	}
	// Fall back to any grok model the account offers.
	for _, m := range models.Data {
		if strings.HasPrefix(m.ID, "grok") {
			c.Model = m.ID
			return nil
		}
	}
	return fmt.Errorf("no usable grok model available")
}
