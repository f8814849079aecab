package ideagraph

import "context"

// AnalysisService runs the bundled traversal strategies over a whole discussion
type AnalysisService interface {
	// MostCommonWords counts the words of every idea below startID (the root
	// when empty) plus the posts attached to startID, and returns the top n.
	MostCommonWords(ctx context.Context, discussionID, startID, locale string, n int) ([]WordCount, error)

	// Outline renders the live graph of a discussion as an ASCII tree
	Outline(ctx context.Context, discussionID, locale string) (string, error)
}

// WordCount is one entry of a word frequency table
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
