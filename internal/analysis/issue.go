package analysis

import "strings"

const (
	FieldIssueType      = "issue_type"
	FieldPriority       = "priority"
	FieldComplexity     = "complexity"
	FieldReviewFeedback = "review_feedback"
	FieldNextSteps      = "next_steps"
)

// Taxonomy is the set of classification values an issue can receive.
type Taxonomy struct {
	IssueTypes       []string
	PriorityLevels   []string
	ComplexityLevels []string
}

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		IssueTypes:       []string{"Epic", "Change Request", "Bug Fix", "Task", "Question"},
		PriorityLevels:   []string{"Critical", "High", "Medium", "Low"},
		ComplexityLevels: []string{"Simple", "Moderate", "Complex"},
	}
}

// IssueSchema is the response schema used for issue analysis.
func (t Taxonomy) IssueSchema() Schema {
	return Schema{
		{Name: FieldIssueType, Type: TypeEnum, Required: true, Allowed: t.IssueTypes},
		{Name: FieldPriority, Type: TypeEnum, Required: true, Allowed: t.PriorityLevels},
		{Name: FieldComplexity, Type: TypeEnum, Allowed: t.ComplexityLevels},
		{Name: FieldReviewFeedback, Type: TypeString, Required: true},
		{Name: FieldNextSteps, Type: TypeStringList},
	}
}

// AllLabels lists every label the taxonomy can produce, which is the set a
// repository needs before analyses can be applied.
func (t Taxonomy) AllLabels() []string {
	var labels []string
	for _, v := range t.IssueTypes {
		labels = append(labels, TypeLabel(v))
	}
	for _, v := range t.PriorityLevels {
		labels = append(labels, PriorityLabel(v))
	}
	for _, v := range t.ComplexityLevels {
		labels = append(labels, ComplexityLabel(v))
	}
	return labels
}

// PromptValues are the comma-joined option lists injected into prompts.
func (t Taxonomy) PromptValues() map[string]string {
	return map[string]string{
		"issue_types":       strings.Join(t.IssueTypes, ", "),
		"priority_levels":   strings.Join(t.PriorityLevels, ", "),
		"complexity_levels": strings.Join(t.ComplexityLevels, ", "),
	}
}

func TypeLabel(v string) string       { return "Type: " + v }
func PriorityLabel(v string) string   { return "Priority: " + v }
func ComplexityLabel(v string) string { return "Complexity: " + v }

// IssueAnalysis is the typed view of a validated issue analysis record.
type IssueAnalysis struct {
	IssueType      string   `json:"issue_type"`
	Priority       string   `json:"priority"`
	Complexity     string   `json:"complexity,omitempty"`
	ReviewFeedback string   `json:"review_feedback"`
	NextSteps      []string `json:"next_steps,omitempty"`
}

func FromRecord(r Record) IssueAnalysis {
	return IssueAnalysis{
		IssueType:      r.String(FieldIssueType),
		Priority:       r.String(FieldPriority),
		Complexity:     r.String(FieldComplexity),
		ReviewFeedback: r.String(FieldReviewFeedback),
		NextSteps:      r.Strings(FieldNextSteps),
	}
}

// Labels returns the labels to apply for this analysis.
func (a IssueAnalysis) Labels() []string {
	labels := []string{TypeLabel(a.IssueType), PriorityLabel(a.Priority)}
	if a.Complexity != "" {
		labels = append(labels, ComplexityLabel(a.Complexity))
	}
	return labels
}
