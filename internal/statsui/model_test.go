package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	for i, email := range []string{"a@b.co", "other@b.co", "a@b.co"} {
		completed := time.Now().Add(time.Duration(i-3) * time.Hour)
		summary := model.ResultsSummary{
			Email:               email,
			Score:               40 + 20*i,
			TotalQuestions:      2,
			CorrectAnswers:      1,
			IncorrectAnswers:    0,
			UnansweredQuestions: 1,
			TimeTaken:           time.Minute,
			TimeLimit:           quiz.DefaultTimeLimit,
			CompletedAt:         completed,
			Results: []model.QuestionResult{
				{QuestionID: 1, Question: "Q1", UserAnswer: "a", CorrectAnswer: "a", IsCorrect: true, Category: "Art", Difficulty: "easy"},
				{QuestionID: 2, Question: "Q2", UserAnswer: quiz.NotAnswered, CorrectAnswer: "b", Category: "History", Difficulty: "hard"},
			},
		}
		if _, err := st.InsertAttempt(context.Background(), summary, completed.Add(-time.Minute)); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}
	return st
}

func TestModelLoadsReport(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if len(m.report.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(m.report.Attempts))
	}
	if len(m.attTable.Rows()) != 3 {
		t.Fatalf("expected 3 attempt rows, got %d", len(m.attTable.Rows()))
	}
	if got := m.attTable.Rows()[0][0]; !strings.HasSuffix(got, "ago") {
		t.Fatalf("expected relative time, got %q", got)
	}
	if len(m.catTable.Rows()) != 2 {
		t.Fatalf("expected 2 category rows, got %d", len(m.catTable.Rows()))
	}
}

func TestEmailFilter(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("a@b.co")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter applied")
	}
	if len(m.report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts for a@b.co, got %d", len(m.report.Attempts))
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	m.startFilter()
	m.filterInputs[2].SetValue("-1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error to keep form open")
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestViewRendersTabs(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Categories", "Attempts", "Avg Score", "Most played categories"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 || prevCurveWindow(5) != 1 {
		t.Fatalf("unexpected prev window")
	}
}

func TestAttemptReview(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.detailMode {
		t.Fatalf("review should only open on the attempts tab")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabAttempts {
		t.Fatalf("expected attempts tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detailMode {
		t.Fatalf("expected review mode, err=%q", m.errMsg)
	}
	view := m.View()
	if !strings.Contains(view, "Not answered") || !strings.Contains(view, "Correct answer: b") {
		t.Fatalf("expected per-question review, got:\n%s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailMode {
		t.Fatalf("expected esc to close review")
	}
}
