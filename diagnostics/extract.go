package diagnostics

import (
	"encoding/json"
)

// FileProblems is the structured payload of one get_file_problems result.
// Individual problem entries are passed through untouched; the tool only
// cares whether the list is empty.
type FileProblems struct {
	FilePath string            `json:"filePath"`
	Errors   []json.RawMessage `json:"errors"`
}

// toolResult is the generic MCP tool-result envelope: the structured
// payload either appears directly, or JSON-encoded inside the first
// content item's text.
type toolResult struct {
	StructuredContent *FileProblems `json:"structuredContent"`
	Content           []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ExtractProblems locates the tool's structured payload inside a raw RPC
// result object. It tries the direct structuredContent field first, then
// falls back to parsing the embedded content text; any parse failure means
// "no result". A zero-value structuredContent object counts as absent, so
// an empty placeholder does not mask a real payload in the content text.
// Only payloads with a non-empty errors list are interesting; everything
// else returns nil.
func ExtractProblems(result map[string]any) *FileProblems {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil
	}

	var tr toolResult
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil
	}

	structured := tr.StructuredContent
	if structured == nil || (structured.FilePath == "" && len(structured.Errors) == 0) {
		if len(tr.Content) == 0 || tr.Content[0].Text == "" {
			return nil
		}
		structured = &FileProblems{}
		if err := json.Unmarshal([]byte(tr.Content[0].Text), structured); err != nil {
			return nil
		}
	}

	if len(structured.Errors) == 0 {
		return nil
	}
	return structured
}
