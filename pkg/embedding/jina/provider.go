package jina

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gm-shield-be/pkg/embedding"
)

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/embeddings",
		model:   "jina-embeddings-v2-base-en",
	}
}

func (p *JinaProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vectors, err := p.GenerateBatch([]string{text}, taskType)
	if err != nil {
		return nil, err
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: vectors[0],
		},
	}, nil
}

// GenerateBatch sends the whole batch in one request; Jina's API natively
// accepts an array of inputs.
func (p *JinaProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{
		Model: p.model,
		Input: texts,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var jinaResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if jinaResp.Error != nil {
		return nil, fmt.Errorf("jina api returned error: %s", jinaResp.Error.Message)
	}

	if len(jinaResp.Data) != len(texts) {
		return nil, fmt.Errorf("jina returned %d embeddings for %d inputs", len(jinaResp.Data), len(texts))
	}

	// Jina returns 768 dimensions for v2-base-en, matching the vector column.
	vectors := make([][]float32, len(jinaResp.Data))
	for _, d := range jinaResp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
