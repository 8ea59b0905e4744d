package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/prompts/abc", r.URL.Path)
		assert.Equal(t, "Bearer "+validTestKey, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "abc", "title": "Test"},
		})
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(validTestKey, server.URL)
	require.NoError(t, err)

	resp, err := api.Get("/prompts/abc")
	require.NoError(t, err)

	var prompt Prompt
	require.NoError(t, json.Unmarshal(resp.Data, &prompt))
	assert.Equal(t, "abc", prompt.ID)
	assert.Equal(t, "Test", prompt.Title)
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreatePromptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Reviewer", req.Title)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "new-id", "title": req.Title},
		})
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(validTestKey, server.URL)
	require.NoError(t, err)

	resp, err := api.Post("/prompts", CreatePromptRequest{Title: "Reviewer", Content: "You review code."})
	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "prompt not found"})
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(validTestKey, server.URL)
	require.NoError(t, err)

	_, err = api.Get("/prompts/missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "prompt not found", apiErr.Message)
}

func TestAPIClient_NonJSONErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(validTestKey, server.URL)
	require.NoError(t, err)

	_, err = api.Get("/prompts")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestAPIClient_GetRaw(t *testing.T) {
	css := ":root {\n  --primary-500: #3b82f6;\n}\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/themes/abc/css", r.URL.Path)
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write([]byte(css))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(validTestKey, server.URL)
	require.NoError(t, err)

	body, err := api.GetRaw("/themes/abc/css")
	require.NoError(t, err)
	assert.Equal(t, css, string(body))
}
