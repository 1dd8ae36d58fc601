package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuiquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleSummary(email string, completedAt time.Time) model.ResultsSummary {
	return model.ResultsSummary{
		Email:               email,
		Score:               50,
		TotalQuestions:      3,
		CorrectAnswers:      1,
		IncorrectAnswers:    1,
		UnansweredQuestions: 1,
		TimeTaken:           90 * time.Second,
		TimeLimit:           30 * time.Minute,
		CompletedAt:         completedAt,
		Results: []model.QuestionResult{
			{QuestionID: 1, Question: "Q1", UserAnswer: "a", CorrectAnswer: "a", IsCorrect: true, Category: "Art", Difficulty: "easy"},
			{QuestionID: 2, Question: "Q2", UserAnswer: "d", CorrectAnswer: "c", Category: "Art", Difficulty: "easy"},
			{QuestionID: 3, Question: "Q3", UserAnswer: quiz.NotAnswered, CorrectAnswer: "e", Category: "History", Difficulty: "hard"},
		},
	}
}

func TestInsertAndListAttempts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		email := "a@b.co"
		if i == 1 {
			email = "other@b.co"
		}
		completed := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		id, err := st.InsertAttempt(ctx, sampleSummary(email, completed), completed.Add(-2*time.Minute))
		if err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := st.ListAttempts(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 3 || all[0].AttemptID != ids[0] || all[2].AttemptID != ids[2] {
		t.Fatalf("unexpected attempts: %+v", all)
	}
	if all[0].TimeTakenMs != 90000 || all[0].Score != 50 || all[0].Unanswered != 1 {
		t.Fatalf("unexpected aggregate: %+v", all[0])
	}

	mine, err := st.ListAttempts(ctx, model.HistoryConfig{Email: "a@b.co", Last: 1})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(mine) != 1 || mine[0].AttemptID != ids[2] {
		t.Fatalf("unexpected filtered attempts: %+v", mine)
	}

	since := time.Unix(0, 0).Add(90 * time.Minute)
	recent, err := st.ListAttempts(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent attempt, got %d", len(recent))
	}
}

func TestCategoryAggregatesAndResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(100, 0)
	id, err := st.InsertAttempt(ctx, sampleSummary("a@b.co", now), now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}

	aggs, err := st.ListCategoryAggregates(ctx, []string{id})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 categories, got %+v", aggs)
	}
	if aggs[0].Category != "Art" || aggs[0].Correct != 1 || aggs[0].Incorrect != 1 || aggs[0].Unanswered != 0 {
		t.Fatalf("unexpected Art aggregate: %+v", aggs[0])
	}
	if aggs[1].Category != "History" || aggs[1].Unanswered != 1 {
		t.Fatalf("unexpected History aggregate: %+v", aggs[1])
	}

	results, err := st.ListAttemptResults(ctx, id)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].IsCorrect || results[2].UserAnswer != quiz.NotAnswered {
		t.Fatalf("unexpected results: %+v", results)
	}

	if empty, err := st.ListCategoryAggregates(ctx, nil); err != nil || empty != nil {
		t.Fatalf("expected nil aggregates for no ids, got %v %v", empty, err)
	}
}

func TestListAttemptsOrdersByInstant(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	completions := []time.Time{
		base.Add(-time.Minute).In(plus5),
		base,
		base.Add(500 * time.Millisecond),
	}
	// Insert newest first so insertion order cannot mask the sort.
	ids := make([]string, len(completions))
	for i := len(completions) - 1; i >= 0; i-- {
		id, err := st.InsertAttempt(ctx, sampleSummary("a@b.co", completions[i]), completions[i].Add(-time.Minute))
		if err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
		ids[i] = id
	}

	all, err := st.ListAttempts(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
	for i, a := range all {
		if a.AttemptID != ids[i] {
			t.Fatalf("attempt %d: got %s, want %s", i, a.AttemptID, ids[i])
		}
		if !a.CompletedAt.Equal(completions[i]) {
			t.Fatalf("attempt %d: completed %v, want %v", i, a.CompletedAt, completions[i])
		}
	}

	since := base.Add(250 * time.Millisecond).In(plus5)
	recent, err := st.ListAttempts(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].AttemptID != ids[2] {
		t.Fatalf("unexpected attempts since %v: %+v", since, recent)
	}
}
