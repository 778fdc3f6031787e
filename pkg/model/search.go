package model

// SearchResult is one ranked hit from a web search provider
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// Source converts a search hit into a citable evidence source
func (r *SearchResult) Source() Source {
	return Source{
		Title:   r.Title,
		URL:     r.Link,
		Domain:  r.DisplayLink,
		Snippet: r.Snippet,
	}
}

// Document is extracted article content of a fetched page
type Document struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Synthesis is the structured claim set extracted from documents
type Synthesis struct {
	Claims            []Claim `json:"claims"`
	OverallConfidence float64 `json:"overallConfidence"`
}

// Explanation is human-readable text describing an eco-score
type Explanation struct {
	Summary          string   `json:"summary"`
	RationaleBullets []string `json:"rationaleBullets"`
}
