package types

// SearchResult represents a single function search hit with relevance information
type SearchResult struct {
	// Identification
	FunctionID int64
	Rank       int // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 // BM25 score normalized to [0, 1]

	// Metadata
	Package  string
	Version  string
	Function *FunctionRecord
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.FunctionID == 0 {
		return ErrInvalidFunctionID
	}

	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if sr.Package == "" {
		return ErrMissingPackage
	}

	if sr.Function == nil {
		return ErrMissingName
	}

	return sr.Function.Validate()
}
