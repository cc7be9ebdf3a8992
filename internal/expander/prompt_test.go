package expander

import (
	"strings"
	"testing"

	"github.com/dataset-tools/dataset-expander/internal/dataset"
)

func promptSchema(t *testing.T) *dataset.Schema {
	t.Helper()
	schema, err := dataset.InferSchema([]string{"name", "age"}, [][]string{{"Alice", "30"}, {"Bob", "25"}})
	if err != nil {
		t.Fatalf("InferSchema() error = %v", err)
	}
	return schema
}

func TestBuildPrompt(t *testing.T) {
	schema := promptSchema(t)
	examples := []dataset.Row{{"Alice", "30"}, {"Bob", "25"}}

	prompt := BuildPrompt(schema, examples, 5, "ages are adults")

	for _, want := range []string{
		"name (string)",
		"age (number)",
		"Alice,30",
		"Bob,25",
		"exactly 5 new rows",
		"2 comma-separated fields",
		"ages are adults",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q in:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptWithoutAnalysisOrExamples(t *testing.T) {
	schema := promptSchema(t)

	prompt := BuildPrompt(schema, nil, 3, "")

	if strings.Contains(prompt, "Dataset analysis") {
		t.Error("BuildPrompt() includes an analysis section with no analysis")
	}
	if strings.Contains(prompt, "Example rows") {
		t.Error("BuildPrompt() includes an example section with no examples")
	}
}

func TestBuildPromptQuotesDelimiterFields(t *testing.T) {
	schema := promptSchema(t)
	examples := []dataset.Row{{"Smith, Bob", "25"}}

	prompt := BuildPrompt(schema, examples, 1, "")

	if !strings.Contains(prompt, `"Smith, Bob",25`) {
		t.Errorf("BuildPrompt() did not quote a comma-containing field:\n%s", prompt)
	}
}

func TestBuildPromptIsPure(t *testing.T) {
	schema := promptSchema(t)
	examples := []dataset.Row{{"Alice", "30"}}

	first := BuildPrompt(schema, examples, 2, "x")
	second := BuildPrompt(schema, examples, 2, "x")
	if first != second {
		t.Error("BuildPrompt() is not deterministic for identical inputs")
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	schema := promptSchema(t)
	sample := []dataset.Row{{"Alice", "30"}}

	prompt := BuildAnalysisPrompt(schema, sample, "from the HR system")

	for _, want := range []string{"name,age", "Alice,30", "from the HR system"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildAnalysisPrompt() missing %q in:\n%s", want, prompt)
		}
	}
}
