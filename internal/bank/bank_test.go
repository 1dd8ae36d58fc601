package bank

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
)

func TestLoadQuestions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")
	body := `{"response_code":0,"results":[{"difficulty":"easy","category":"Art","question":"Q?","correct_answer":"A","incorrect_answers":["B","C","D"]}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	questions, err := LoadQuestions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "A" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestLoadQuestionsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"response_code":0,"results":[]}`), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	if _, err := LoadQuestions(path); err == nil {
		t.Fatalf("expected error for empty bank")
	}
}

func TestSelectFiltersAndLimits(t *testing.T) {
	questions := []model.RawQuestion{
		{Question: "1", Difficulty: "easy"},
		{Question: "2", Difficulty: "hard"},
		{Question: "3", Difficulty: "easy"},
		{Question: "4", Difficulty: "Easy"},
	}
	rnd := rand.New(rand.NewSource(3))
	picked := Select(rnd, questions, 2, FilterForDifficulty("easy"))
	if len(picked) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(picked))
	}
	for _, q := range picked {
		if q.Question == "2" {
			t.Fatalf("hard question should be filtered out")
		}
	}
	all := Select(rnd, questions, 0, FilterForDifficulty(""))
	if len(all) != len(questions) {
		t.Fatalf("expected all questions, got %d", len(all))
	}
}

func TestSourceFetchQuestions(t *testing.T) {
	questions := []model.RawQuestion{
		{Question: "1", Difficulty: "easy", Type: "boolean"},
		{Question: "2", Difficulty: "easy", Type: "multiple"},
		{Question: "3", Difficulty: "hard", Type: "boolean"},
	}
	src := NewSource(questions, rand.New(rand.NewSource(1)))

	picked, err := src.FetchQuestions(context.Background(), trivia.Params{Amount: 5, Difficulty: "easy", Type: "boolean"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(picked) != 1 || picked[0].Question != "1" {
		t.Fatalf("unexpected questions %+v", picked)
	}

	if _, err := src.FetchQuestions(context.Background(), trivia.Params{Difficulty: "medium"}); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
	if len(questions) != 3 {
		t.Fatalf("bank should not shrink")
	}
}

func TestSaveQuestionsReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bank.json")
	first := []model.RawQuestion{{Type: "boolean", Difficulty: "easy", Category: "Art", Question: "Q1", CorrectAnswer: "True", IncorrectAnswers: []string{"False"}}}
	if err := SaveQuestions(path, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := Merge(first, []model.RawQuestion{
		{Type: "boolean", Difficulty: "hard", Category: "Art", Question: "Q1", CorrectAnswer: "False", IncorrectAnswers: []string{"True"}},
		{Type: "boolean", Difficulty: "hard", Category: "Art", Question: "Q2", CorrectAnswer: "False", IncorrectAnswers: []string{"True"}},
	})
	if len(second) != 2 {
		t.Fatalf("expected duplicate question skipped, got %d", len(second))
	}
	if err := SaveQuestions(path, second); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, err := LoadQuestions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].CorrectAnswer != "True" || loaded[1].Question != "Q2" {
		t.Fatalf("unexpected bank %+v", loaded)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, got %d entries", len(entries))
	}
}
