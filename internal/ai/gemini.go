package ai

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

	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// ErrUnparseableResponse is returned when no JSON array can be extracted
// from the model's free-form reply.
var ErrUnparseableResponse = errors.New("could not parse recipe suggestions from model response")

// Suggestion is one generated recipe idea.
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	PrepTime    int      `json:"prepTime"`
	Servings    int      `json:"servings"`
	Cuisine     string   `json:"cuisine"`
	Tags        []string `json:"tags"`
}

// Client calls the Gemini text generation API. It is a pure collaborator:
// it never touches application storage, and its failures surface as errors
// to the caller only.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// GenerateSuggestions asks the model for recipe ideas built around the given
// ingredients and parses the JSON array embedded in its reply.
func (c *Client) GenerateSuggestions(ctx context.Context, ingredients string) ([]Suggestion, error) {
	prompt := fmt.Sprintf(
		"Generate 3 unique recipe suggestions using primarily these ingredients: %s. "+
			"For each recipe provide a title, a 2-3 sentence description, a complete "+
			"ingredients list (including the provided ingredients plus any additional needed), "+
			"step-by-step cooking instructions, estimated prep time in minutes, number of "+
			"servings, cuisine type, and 3 relevant tags (e.g. \"quick\", \"healthy\", \"comfort-food\"). "+
			"Format the response as a JSON array of recipe objects with these exact fields: "+
			"title, description, ingredients (array), steps (array), prepTime (number), "+
			"servings (number), cuisine, tags (array). "+
			"Do not include any explanations or text outside of the JSON array.",
		ingredients,
	)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.7,
			"topP":        0.8,
			"topK":        40,
		},
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Warn("gemini API error",
			zap.String("status", resp.Status),
			zap.ByteString("body", bodyBytes))
		return nil, fmt.Errorf("gemini API error: %s", resp.Status)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrUnparseableResponse
	}

	raw, err := extractJSONArray(geminiResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, ErrUnparseableResponse
	}

	return suggestions, nil
}

// extractJSONArray pulls the JSON array out of free-form model text. Models
// routinely wrap the array in prose or markdown fences; a single object is
// tolerated and wrapped into an array.
func extractJSONArray(text string) (string, error) {
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "[")
	endIdx := strings.LastIndex(text, "]")
	if startIdx != -1 && endIdx != -1 && startIdx < endIdx {
		return text[startIdx : endIdx+1], nil
	}

	startIdx = strings.Index(text, "{")
	endIdx = strings.LastIndex(text, "}")
	if startIdx != -1 && endIdx != -1 && startIdx < endIdx {
		return "[" + text[startIdx:endIdx+1] + "]", nil
	}

	return "", ErrUnparseableResponse
}
