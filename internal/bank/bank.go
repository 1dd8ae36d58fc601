// Package bank loads questions from a local file instead of the network.
package bank

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
)

// LoadQuestions reads a saved trivia API response from path.
func LoadQuestions(path string) ([]model.RawQuestion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only question bank.
			_ = cerr
		}
	}()

	questions, err := trivia.DecodeResponse(file)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}
	return questions, nil
}

// SaveQuestions writes questions to path in the upstream response shape,
// replacing any existing file atomically.
func SaveQuestions(path string, questions []model.RawQuestion) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create bank dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "bank-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp bank: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trivia.Response{ResponseCode: 0, Results: questions}); err != nil {
		return fmt.Errorf("failed to encode bank: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush bank: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close bank: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write bank: %w", err)
	}
	return nil
}

// Merge appends questions not already present in existing, keyed by question text.
func Merge(existing, incoming []model.RawQuestion) []model.RawQuestion {
	seen := make(map[string]struct{}, len(existing))
	out := make([]model.RawQuestion, 0, len(existing)+len(incoming))
	for _, q := range existing {
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	for _, q := range incoming {
		if _, ok := seen[q.Question]; ok {
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}
