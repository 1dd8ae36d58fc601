package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/bank"
	"github.com/verte-zerg/tuiquiz/internal/config"
	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/stats"
)

func validConfig() model.Config {
	return model.Config{
		Amount:    15,
		TimeLimit: 30 * time.Minute,
		APIURL:    "https://opentdb.com",
		Timeout:   10 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*model.Config){
		"amount":     func(c *model.Config) { c.Amount = 0 },
		"too many":   func(c *model.Config) { c.Amount = maxAmount + 1 },
		"difficulty": func(c *model.Config) { c.Difficulty = "extreme" },
		"type":       func(c *model.Config) { c.Type = "essay" },
		"time limit": func(c *model.Config) { c.TimeLimit = 0 },
		"timeout":    func(c *model.Config) { c.Timeout = -time.Second },
		"email":      func(c *model.Config) { c.Email = "nope" },
		"category":   func(c *model.Config) { c.Category = -1 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestHistoryConfig(t *testing.T) {
	cfg, err := historyConfig("a@b.co", "2024-03-01", 5, 3)
	if err != nil {
		t.Fatalf("history config: %v", err)
	}
	if cfg.Email != "a@b.co" || cfg.Last != 5 || cfg.CurveWindow != 3 || cfg.Since == nil {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := historyConfig("", "03/01/2024", 0, 1); err == nil {
		t.Fatalf("expected bad date error")
	}
	if _, err := historyConfig("", "", 0, 0); err == nil {
		t.Fatalf("expected bad window error")
	}
}

func TestApplyQuizConfigRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("amount", "7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	amount := 20
	difficulty := "hard"
	limit := config.Duration{Duration: 5 * time.Minute}
	applyQuizConfig(cmd, config.QuizConfig{Amount: &amount, Difficulty: &difficulty, TimeLimit: &limit})

	if quizAmount != 7 {
		t.Fatalf("expected flag to win, got %d", quizAmount)
	}
	if quizDifficulty != "hard" {
		t.Fatalf("expected config difficulty, got %q", quizDifficulty)
	}
	if quizTimeLimit != 5*time.Minute {
		t.Fatalf("expected config time limit, got %v", quizTimeLimit)
	}
}

func TestRenderPlainReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPlainReport(&buf, stats.Report{}, 5, time.Now()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No attempts found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderPlainReportListsCategories(t *testing.T) {
	now := time.Now()
	report := stats.Report{
		Attempts: []model.AttemptAggregate{
			{AttemptID: "1", Email: "a@b.co", Score: 50, Total: 2, Correct: 1, Unanswered: 1, CompletedAt: now.Add(-time.Hour)},
		},
		CategoryAggs: []model.CategoryAggregate{
			{Category: "Art", Correct: 1},
			{Category: "History", Unanswered: 1},
		},
		TopCategories:  []string{"Art", "History"},
		WeakCategories: []string{"Art"},
	}
	var buf bytes.Buffer
	if err := renderPlainReport(&buf, report, 5, now); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Most played categories: Art, History", "Weakest categories: Art"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	if !strings.Contains(tmpl, "time-limit = \"30m0s\"") {
		t.Fatalf("expected default time limit in template")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestListenURL(t *testing.T) {
	if got := listenURL(":8080"); got != "http://localhost:8080" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := listenURL("127.0.0.1:9000"); got != "http://127.0.0.1:9000" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestFetchCmdWritesBank(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api.php" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `{"response_code":0,"results":[{"type":"boolean","difficulty":"easy","category":"Art","question":"Q%d","correct_answer":"True","incorrect_answers":["False"]}]}`, calls)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "bank.json")
	for i := 0; i < 2; i++ {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"fetch", "--api-url", srv.URL, "--out", out, "--amount", "1", "--append"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	questions, err := bank.LoadQuestions(out)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected appended bank of 2, got %d", len(questions))
	}
}
