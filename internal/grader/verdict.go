package grader

// Verdict is a binary relevance judgment for one candidate at one rank
// position. Immutable once produced.
type Verdict struct {
	QueryID  string `json:"query_id"`
	Searcher string `json:"searcher"`
	// Rank is the 1-indexed position the searcher returned the
	// candidate at. Stable within a (query, searcher) pair.
	Rank int    `json:"rank"`
	URL  string `json:"url,omitempty"`
	// Match is 1 when the candidate satisfies all query criteria,
	// 0 otherwise. Meaningless when Graded is false.
	Match int `json:"match"`
	// Graded is false when the judge failed after bounded retries;
	// such placeholders are never defaulted to 0 or 1.
	Graded    bool   `json:"graded"`
	Rationale string `json:"rationale,omitempty"`
}

// PairResult holds the ordered verdicts for one (query, searcher)
// pair. A pair with no verdicts records a search that returned zero
// candidates; it still counts against recall.
type PairResult struct {
	QueryID  string    `json:"query_id"`
	Searcher string    `json:"searcher"`
	Verdicts []Verdict `json:"verdicts"`
}
