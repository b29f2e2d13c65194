package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const suggestionsModel = "gpt-3.5-turbo"

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggestions asks the OpenAI chat completions API for places to visit
// around the given location and returns the raw suggestion text.
func (c *Client) Suggestions(ctx context.Context, location string) (string, error) {
	if c.openAIKey == "" {
		return "", ErrNotConfigured
	}

	cacheKey := "suggestions:" + location
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: suggestionsModel,
		Messages: []chatMessage{
			{
				Role:    "user",
				Content: fmt.Sprintf("List the top places to visit near %s, one per line.", location),
			},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.openAIBaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.openAIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var payload chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	suggestions := payload.Choices[0].Message.Content
	c.cache.Set(cacheKey, suggestions)
	return suggestions, nil
}
