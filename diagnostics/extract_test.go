package diagnostics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredResult(t *testing.T, filePath string, errs []map[string]any) map[string]any {
	t.Helper()
	return map[string]any{
		"structuredContent": map[string]any{
			"filePath": filePath,
			"errors":   errs,
		},
	}
}

func embeddedResult(t *testing.T, filePath string, errs []map[string]any) map[string]any {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"filePath": filePath,
		"errors":   errs,
	})
	require.NoError(t, err)
	return map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": string(payload)},
		},
	}
}

func TestExtractProblemsStructuredField(t *testing.T) {
	errs := []map[string]any{{"severity": "ERROR", "description": "undefined symbol"}}
	problems := ExtractProblems(structuredResult(t, "/tmp/a.go", errs))

	require.NotNil(t, problems)
	assert.Equal(t, "/tmp/a.go", problems.FilePath)
	assert.Len(t, problems.Errors, 1)
}

func TestExtractProblemsEmbeddedText(t *testing.T) {
	errs := []map[string]any{{"severity": "WARNING", "description": "unused import"}}
	problems := ExtractProblems(embeddedResult(t, "/tmp/b.go", errs))

	require.NotNil(t, problems)
	assert.Equal(t, "/tmp/b.go", problems.FilePath)
	assert.Len(t, problems.Errors, 1)
}

func TestExtractProblemsRoundTripEquivalence(t *testing.T) {
	// The same payload delivered directly or embedded as a JSON string must
	// extract identically.
	errs := []map[string]any{
		{"severity": "ERROR", "description": "boom", "line": 12},
		{"severity": "ERROR", "description": "bang", "line": 40},
	}

	direct := ExtractProblems(structuredResult(t, "/src/main.go", errs))
	embedded := ExtractProblems(embeddedResult(t, "/src/main.go", errs))

	require.NotNil(t, direct)
	require.NotNil(t, embedded)
	assert.Equal(t, direct.FilePath, embedded.FilePath)

	directJSON, err := json.Marshal(direct.Errors)
	require.NoError(t, err)
	embeddedJSON, err := json.Marshal(embedded.Errors)
	require.NoError(t, err)
	assert.JSONEq(t, string(directJSON), string(embeddedJSON))
}

func TestExtractProblemsEmptyStructuredFallsBackToContent(t *testing.T) {
	// Some servers send a placeholder structuredContent object next to the
	// real payload in the content text; the placeholder counts as absent.
	errs := []map[string]any{{"severity": "ERROR"}}
	result := embeddedResult(t, "/a.go", errs)
	result["structuredContent"] = map[string]any{}

	problems := ExtractProblems(result)
	require.NotNil(t, problems)
	assert.Equal(t, "/a.go", problems.FilePath)
	assert.Len(t, problems.Errors, 1)
}

func TestExtractProblemsPopulatedStructuredWins(t *testing.T) {
	// A structuredContent that names a file is authoritative even when its
	// errors list is empty; the content text is not consulted.
	errs := []map[string]any{{"severity": "ERROR"}}
	result := embeddedResult(t, "/b.go", errs)
	result["structuredContent"] = map[string]any{
		"filePath": "/clean.go",
		"errors":   []map[string]any{},
	}

	assert.Nil(t, ExtractProblems(result))
}

func TestExtractProblemsEmptyErrorsIsUninteresting(t *testing.T) {
	assert.Nil(t, ExtractProblems(structuredResult(t, "/tmp/clean.go", []map[string]any{})))
	assert.Nil(t, ExtractProblems(embeddedResult(t, "/tmp/clean.go", nil)))
}

func TestExtractProblemsMalformedIsNoResult(t *testing.T) {
	assert.Nil(t, ExtractProblems(map[string]any{}))
	assert.Nil(t, ExtractProblems(map[string]any{
		"content": []any{map[string]any{"type": "text", "text": "not json"}},
	}))
	assert.Nil(t, ExtractProblems(map[string]any{
		"content": []any{map[string]any{"type": "text", "text": ""}},
	}))
}
