package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbeddingClientOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req openAIEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}
		resp := openAIEmbeddingResponse{}
		resp.Data = append(resp.Data, struct {
			Embedding []float32 `json:"embedding"`
		}{Embedding: []float32{0.1, 0.2}}, struct {
			Embedding []float32 `json:"embedding"`
		}{Embedding: []float32{0.3, 0.4}})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(Config{
		Provider: "openai",
		Model:    "text-embedding-3-small",
		APIURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vector value %f", vectors[1][0])
	}
}

func TestEmbeddingClientRequiresModel(t *testing.T) {
	if _, err := NewEmbeddingClient(Config{}); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestEmbedRequiresInputs(t *testing.T) {
	client, err := NewEmbeddingClient(Config{Model: "m"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Embed(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty inputs")
	}
}

func TestProbeEmbeddingDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := openAIEmbeddingResponse{}
		resp.Data = append(resp.Data, struct {
			Embedding []float32 `json:"embedding"`
		}{Embedding: make([]float32, 1536)})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(Config{Model: "m", APIURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	dims, err := ProbeEmbeddingDimensions(context.Background(), client)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if dims != 1536 {
		t.Fatalf("expected 1536 dimensions, got %d", dims)
	}
}
