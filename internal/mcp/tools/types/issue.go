package types

type IssueSummary struct {
	Repository string `json:"repository"`
	Number     int    `json:"number,omitempty"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
}

type AnalysisResult struct {
	Issue          IssueSummary `json:"issue"`
	IssueType      string       `json:"issue_type"`
	Priority       string       `json:"priority"`
	Complexity     string       `json:"complexity,omitempty"`
	ReviewFeedback string       `json:"review_feedback"`
	NextSteps      []string     `json:"next_steps,omitempty"`
	Labels         []string     `json:"labels"`
	Comment        string       `json:"comment"`
}

type RenderedPrompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

type SimilarIssue struct {
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	State      string  `json:"state,omitempty"`
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity"`
}
