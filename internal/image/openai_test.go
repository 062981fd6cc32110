package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &OpenAIGenerator{Client: srv.Client(), Key: "sk-test", BaseURL: srv.URL + "/"}
}

func TestOpenAIGenerate(t *testing.T) {
	var got openAIRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img/1"},{"url":""},{"url":"https://img/2"}]}`))
	})

	urls, err := g.Generate(context.Background(), Params{Model: "dall-e-2", Prompt: "a red bicycle", N: 3, Size: "512x512"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1", "https://img/2"}, urls)
	assert.Equal(t, Params{Model: "dall-e-2", Prompt: "a red bicycle", N: 3, Size: "512x512"}, got.Params)
	assert.Equal(t, "url", got.ResponseFormat)
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Your request was rejected by the safety system.","type":"invalid_request_error","code":"content_policy_violation"}}`))
	})

	_, err := g.Generate(context.Background(), Params{Model: "dall-e-3", Prompt: "x", N: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "content_policy_violation", apiErr.Code)
	assert.Equal(t, "Your request was rejected by the safety system.", err.Error())
}

func TestOpenAIGenerateOpaqueError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := g.Generate(context.Background(), Params{Model: "dall-e-3", Prompt: "x", N: 1})
	assert.EqualError(t, err, "provider returned status 502")
}

func TestOpenAIGenerateNoImage(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	})

	_, err := g.Generate(context.Background(), Params{Model: "dall-e-3", Prompt: "x", N: 1})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestOpenAIMissingKey(t *testing.T) {
	calls := 0
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	g.Key = ""

	assert.ErrorIs(t, g.Check(), ErrMissingKey)
	_, err := g.Generate(context.Background(), Params{Model: "dall-e-3", Prompt: "x", N: 1})
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Zero(t, calls)
}
