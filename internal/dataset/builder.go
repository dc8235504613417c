package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrLengthMismatch indicates the summarizer broke its one-summary-per-paragraph
// contract. This is an internal invariant violation, not an expected failure.
var ErrLengthMismatch = errors.New("paragraph and summary counts differ")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is one training example in the chat fine-tuning format: a system
// message carrying the role label, the original paragraph as the user turn,
// and its summary as the assistant turn.
type Record struct {
	Messages []Message `json:"messages"`
}

func BuildRecords(paragraphs, summaries []string, roleLabel string) ([]Record, error) {
	if len(paragraphs) != len(summaries) {
		return nil, fmt.Errorf("%w: %d paragraphs, %d summaries", ErrLengthMismatch, len(paragraphs), len(summaries))
	}

	records := make([]Record, len(paragraphs))
	for i, paragraph := range paragraphs {
		records[i] = Record{Messages: []Message{
			{Role: RoleSystem, Content: roleLabel},
			{Role: RoleUser, Content: paragraph},
			{Role: RoleAssistant, Content: summaries[i]},
		}}
	}
	return records, nil
}

// MarshalJSONL serializes records as line-delimited JSON, one self-contained
// object per line.
func MarshalJSONL(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, record := range records {
		if err := enc.Encode(record); err != nil {
			return nil, fmt.Errorf("encoding dataset record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
