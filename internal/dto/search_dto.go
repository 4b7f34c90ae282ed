package dto

type SearchResult struct {
	ChunkKey   string  `json:"chunk_key"`
	Document   string  `json:"document"`
	SourcePath string  `json:"source_path"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

type RelatedSearchRequest struct {
	Content string `json:"content" validate:"required"`
	TopK    int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

type RelatedSearchResult struct {
	ChunkKey       string  `json:"chunk_key"`
	Document       string  `json:"document"`
	SourcePath     string  `json:"source_path"`
	Score          float64 `json:"score"`
	KeywordOverlap int     `json:"keyword_overlap"`
}

type RelatedSearchResponse struct {
	Query   string                `json:"query"`
	Results []RelatedSearchResult `json:"results"`
}
