package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// geminiReply builds the minimal generateContent response body wrapping the
// given model text.
func geminiReply(t *testing.T, text string) []byte {
	t.Helper()

	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
			},
		},
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return b
}

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key", "test-model", zap.NewNop())
	c.BaseURL = serverURL
	return c
}

func TestGenerateSuggestionsParsesFencedArray(t *testing.T) {
	text := "Here are your recipes:\n```json\n[" +
		`{"title":"Chicken Fried Rice","description":"A quick wok dish.","ingredients":["chicken","rice"],"steps":["fry"],"prepTime":20,"servings":2,"cuisine":"chinese","tags":["quick"]},` +
		`{"title":"Chicken Soup","description":"Comforting.","ingredients":["chicken","broth"],"steps":["simmer"],"prepTime":45,"servings":4,"cuisine":"american","tags":["comfort-food"]}` +
		"]\n```\nEnjoy!"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "test-model")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write(geminiReply(t, text))
	}))
	defer srv.Close()

	suggestions, err := newTestClient(srv.URL).GenerateSuggestions(context.Background(), "chicken, rice")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Chicken Fried Rice", suggestions[0].Title)
	assert.Equal(t, 20, suggestions[0].PrepTime)
	assert.Equal(t, []string{"comfort-food"}, suggestions[1].Tags)
}

func TestGenerateSuggestionsWrapsSingleObject(t *testing.T) {
	text := `The best match is {"title":"Omelette","description":"Fast and simple.","prepTime":10,"servings":1,"cuisine":"french"} and nothing else.`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, text))
	}))
	defer srv.Close()

	suggestions, err := newTestClient(srv.URL).GenerateSuggestions(context.Background(), "eggs")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Omelette", suggestions[0].Title)
	assert.Equal(t, 10, suggestions[0].PrepTime)
}

func TestGenerateSuggestionsUnparseableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "Sorry, I can only answer questions about weather."))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateSuggestions(context.Background(), "eggs")
	assert.ErrorIs(t, err, ErrUnparseableResponse)
}

func TestGenerateSuggestionsEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateSuggestions(context.Background(), "eggs")
	assert.ErrorIs(t, err, ErrUnparseableResponse)
}

func TestGenerateSuggestionsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateSuggestions(context.Background(), "eggs")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnparseableResponse)
}
