package models_test

import (
	"encoding/json"
	"testing"

	"github.com/mailru/easyjson"
	"github.com/stretchr/testify/require"

	"github.com/nkjain92/gpt-image-1/pkg/models"
)

func TestGenerateRequestDecoding(t *testing.T) {
	var req models.GenerateRequest
	err := json.Unmarshal([]byte(`{"prompt":"a cat","quality":"low","size":null,"extra":{"x":[1,2]}}`), &req)
	require.NoError(t, err)

	require.Equal(t, "a cat", req.Prompt)
	require.Equal(t, "low", req.Quality)
	require.Empty(t, req.Size)
}

func TestEditRequestDecoding(t *testing.T) {
	var req models.EditRequest
	err := easyjson.Unmarshal([]byte(`{"prompt":"p","images":["a.png","b.jpg"],"mask":"m.png"}`), &req)
	require.NoError(t, err)

	require.Equal(t, []string{"a.png", "b.jpg"}, req.Images)
	require.Equal(t, "m.png", req.Mask)
}

func TestPromptRequestDecoding(t *testing.T) {
	var req models.PromptRequest
	require.NoError(t, json.Unmarshal([]byte(`{"idea":"fox","style":"Anime","mood":"Dreamy"}`), &req))
	require.Equal(t, models.PromptRequest{Idea: "fox", Style: "Anime", Mood: "Dreamy"}, req)
}

func TestMalformedRequest(t *testing.T) {
	var req models.PromptRequest
	require.Error(t, json.Unmarshal([]byte(`{"idea": 12}`), &req))
}

func TestListResponseEncoding(t *testing.T) {
	data, err := json.Marshal(models.ListResponse{Success: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"images":[]}`, string(data))

	data, err = json.Marshal(models.ListResponse{Success: true, Images: []models.ImageEntry{
		{Filename: "a.png", URL: "/results/a.png", Timestamp: 1700000000000},
	}})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"images":[{"filename":"a.png","url":"/results/a.png","timestamp":1700000000000}]}`, string(data))
}

func TestDecodeStringArray(t *testing.T) {
	out, err := models.DecodeStringArray([]byte(` ["one", "two"] `))
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, out)

	_, err = models.DecodeStringArray([]byte(`{"not":"array"}`))
	require.Error(t, err)
}
