package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type GeminiProvider struct {
	ApiKey string
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{
		ApiKey: apiKey,
	}
}

const geminiModelName = "text-embedding-004"

type geminiBatchRequest struct {
	Requests []EmbeddingRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []EmbeddingResponseEmbedding `json:"embeddings"`
}

func (p *GeminiProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := EmbeddingRequest{
		Model: geminiModelName,
		Content: EmbeddingRequestContent{
			Parts: []EmbeddingRequestContentPart{
				{
					Text: text,
				},
			},
		},
		TaskType: taskType,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		geminiModelName,
	)

	resByte, err := p.post(endpoint, geminiReqJson)
	if err != nil {
		return nil, err
	}

	var resEmbedding EmbeddingResponse
	err = json.Unmarshal(resByte, &resEmbedding)
	if err != nil {
		return nil, err
	}

	return &resEmbedding, nil
}

// GenerateBatch uses batchEmbedContents to embed up to 100 texts per request.
func (p *GeminiProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchReq := geminiBatchRequest{
		Requests: make([]EmbeddingRequest, len(texts)),
	}
	for i, text := range texts {
		batchReq.Requests[i] = EmbeddingRequest{
			Model: "models/" + geminiModelName,
			Content: EmbeddingRequestContent{
				Parts: []EmbeddingRequestContentPart{{Text: text}},
			},
			TaskType: taskType,
		}
	}

	reqJson, err := json.Marshal(batchReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:batchEmbedContents",
		geminiModelName,
	)

	resByte, err := p.post(endpoint, reqJson)
	if err != nil {
		return nil, err
	}

	var batchRes geminiBatchResponse
	if err := json.Unmarshal(resByte, &batchRes); err != nil {
		return nil, err
	}

	if len(batchRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(batchRes.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(batchRes.Embeddings))
	for i, emb := range batchRes.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (p *GeminiProvider) post(endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(
		"POST",
		endpoint,
		bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	return resByte, nil
}
