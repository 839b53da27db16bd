package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/completion"
	"fundscope/internal/config"
	openai "fundscope/internal/completion/openai"
)

func newOpenAITestClient(serverURL string) *openai.Client {
	cfg := &config.CompletionConfig{
		Provider:     "openai",
		APIKey:       "test-openai-key",
		DefaultModel: "gpt-4o-mini",
		TimeoutSecs:  30,
	}
	return openai.NewClientWithEndpoint(cfg, serverURL)
}

func openaiSuccessResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	llmJSON := `{"analysis": [{"Fund Manager": "Acme Capital"}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(llmJSON))
	}))
	defer server.Close()

	c := newOpenAITestClient(server.URL)

	data, err := c.Complete(context.Background(), "extract funds", "Document Name: deck.txt\n\ncontent")
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "analysis")
}

func TestOpenAIClient_Complete_StripsMarkdownFences(t *testing.T) {
	fenced := "```json\n{\"analysis\": []}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(fenced))
	}))
	defer server.Close()

	c := newOpenAITestClient(server.URL)

	data, err := c.Complete(context.Background(), "sys", "payload")
	require.NoError(t, err)
	assert.JSONEq(t, `{"analysis": []}`, string(data))
}

func TestOpenAIClient_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit"}}`))
	}))
	defer server.Close()

	c := newOpenAITestClient(server.URL)

	_, err := c.Complete(context.Background(), "sys", "payload")
	require.Error(t, err)

	var rateErr *completion.RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
}

func TestOpenAIClient_Complete_PayloadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "This model's maximum context length is 128000 tokens", "code": "context_length_exceeded"}}`))
	}))
	defer server.Close()

	c := newOpenAITestClient(server.URL)

	_, err := c.Complete(context.Background(), "sys", "payload")
	require.Error(t, err)
	assert.True(t, completion.IsPayloadSizeError(err))
}

func TestOpenAIClient_Complete_InvalidJSONContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse("this is not json"))
	}))
	defer server.Close()

	c := newOpenAITestClient(server.URL)

	_, err := c.Complete(context.Background(), "sys", "payload")
	assert.Error(t, err)
}
