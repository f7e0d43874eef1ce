package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bugSchema = Schema{
	{Name: "issue_type", Type: TypeEnum, Required: true, Allowed: []string{"Bug", "Feature"}},
	{Name: "priority", Type: TypeEnum, Required: true, Allowed: []string{"Low", "Medium", "High"}},
}

func TestParseYAMLResponse(t *testing.T) {
	rec, err := Parse("issue_type: Bug\npriority: High\n", bugSchema)
	require.NoError(t, err)
	assert.Equal(t, Record{"issue_type": "Bug", "priority": "High"}, rec)
}

func TestParseMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"broken yaml": "not: valid: yaml: ::",
		"empty":       "   ",
		"scalar":      "just a sentence",
		"list":        "- a\n- b",
	} {
		t.Run(name, func(t *testing.T) {
			rec, err := Parse(raw, bugSchema)
			var malformed *MalformedOutputError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Nil(t, rec)
		})
	}
}

func TestParseJSONInFence(t *testing.T) {
	raw := "```json\n{\"issue_type\": \"bug\", \"priority\": \"LOW\", \"extra\": 1}\n```"
	rec, err := Parse(raw, bugSchema)
	require.NoError(t, err)
	assert.Equal(t, Record{"issue_type": "Bug", "priority": "Low"}, rec)
}

func TestParseCollectsEveryViolation(t *testing.T) {
	schema := append(Schema{}, bugSchema...)
	schema = append(schema,
		Field{Name: "summary", Type: TypeString, Required: true},
		Field{Name: "steps", Type: TypeStringList},
	)
	raw := `{"issue_type": "Chore", "priority": 3, "steps": ["ok", 2]}`

	rec, err := Parse(raw, schema)
	assert.Nil(t, rec)
	var sv *SchemaViolationError
	require.True(t, errors.As(err, &sv))

	fields := make([]string, 0, len(sv.Violations))
	for _, v := range sv.Violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"issue_type", "priority", "summary", "steps"}, fields)
}

func TestParseOptionalFields(t *testing.T) {
	schema := Schema{
		{Name: "title", Type: TypeString, Required: true},
		{Name: "notes", Type: TypeString},
		{Name: "tags", Type: TypeStringList},
	}
	rec, err := Parse("title: hi\nnotes: null\n", schema)
	require.NoError(t, err)
	assert.Equal(t, Record{"title": "hi"}, rec)
}

func TestSerializeRoundTrip(t *testing.T) {
	schema := DefaultTaxonomy().IssueSchema()
	rec := Record{
		FieldIssueType:      "Bug Fix",
		FieldPriority:       "High",
		FieldComplexity:     "Moderate",
		FieldReviewFeedback: "yes: the report: is clear",
		FieldNextSteps:      []string{"reproduce", "no"},
	}
	out, err := Serialize(rec)
	require.NoError(t, err)

	back, err := Parse(out, schema)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestIssueAnalysisLabels(t *testing.T) {
	rec, err := Parse(`{"issue_type": "question", "priority": "medium", "review_feedback": "fine"}`, DefaultTaxonomy().IssueSchema())
	require.NoError(t, err)

	a := FromRecord(rec)
	assert.Equal(t, "Question", a.IssueType)
	assert.Equal(t, []string{"Type: Question", "Priority: Medium"}, a.Labels())

	a.Complexity = "Simple"
	assert.Equal(t, []string{"Type: Question", "Priority: Medium", "Complexity: Simple"}, a.Labels())
}

func TestTaxonomyAllLabels(t *testing.T) {
	labels := DefaultTaxonomy().AllLabels()
	assert.Len(t, labels, 12)
	assert.Contains(t, labels, "Type: Change Request")
	assert.Contains(t, labels, "Priority: Critical")
	assert.Contains(t, labels, "Complexity: Complex")
}
