// Package commands holds the assistantctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benvon/talk-to-my-ai/internal/nlu"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// loadVocabulary returns the vocabulary at path, or nil for the built-in one
func loadVocabulary(path string) (*nlu.Vocabulary, error) {
	if path == "" {
		return nil, nil
	}
	vocab, err := nlu.LoadVocabulary(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return vocab, nil
}
