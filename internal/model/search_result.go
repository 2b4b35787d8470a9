package model

// SearchResult is a single retrieved chunk, annotated with the collection it
// came from so fan-out results stay attributable after merging.
type SearchResult struct {
	Text       string                 `json:"text"`
	Score      float32                `json:"score"`
	Collection string                 `json:"collection"`
	Metadata   map[string]interface{} `json:"metadata"`
}
