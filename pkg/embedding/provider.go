package embedding

// Task types passed to providers. Gemini distinguishes document vs query
// embeddings; Ollama and Jina ignore the hint but keep the same call shape.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings.
// Query and corpus embeddings MUST come from the same provider instance so
// they live in the same embedding space.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
	// GenerateBatch embeds a batch of strings in one round trip where the
	// backend supports it. Results are positionally aligned with the input.
	GenerateBatch(texts []string, taskType string) ([][]float32, error)
}
