// Package model defines shared data structures.
package model

import "time"

// Difficulty is the upstream difficulty level of a question.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Config defines quiz settings after merging flags and the config file.
type Config struct {
	Email         string
	Amount        int
	Category      int
	Difficulty    string
	Type          string
	TimeLimit     time.Duration
	APIURL        string
	Timeout       time.Duration
	QuestionsFile string
}

// ServeConfig defines settings for the question proxy.
type ServeConfig struct {
	Addr     string
	Upstream string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// HistoryConfig defines filters for stored attempts.
type HistoryConfig struct {
	Email       string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RawQuestion is a trivia question as delivered by the upstream source.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// ProcessedQuestion is the decoded, shuffled, session-tracked form of a question.
type ProcessedQuestion struct {
	ID            int
	Category      string
	Difficulty    string
	Question      string
	CorrectAnswer string
	Options       []string
	UserAnswer    *string
	IsAnswered    bool
	IsVisited     bool
}

// QuestionResult is the scored outcome of one question.
type QuestionResult struct {
	QuestionID    int
	Question      string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	Category      string
	Difficulty    string
}

// ResultsSummary aggregates a completed quiz.
type ResultsSummary struct {
	Email               string
	Score               int
	TotalQuestions      int
	CorrectAnswers      int
	IncorrectAnswers    int
	UnansweredQuestions int
	TimeTaken           time.Duration
	TimeLimit           time.Duration
	CompletedAt         time.Time
	Results             []QuestionResult
}

// AttemptAggregate summarizes a stored attempt for reporting.
type AttemptAggregate struct {
	AttemptID   string
	Email       string
	StartedAt   time.Time
	CompletedAt time.Time
	Score       int
	Total       int
	Correct     int
	Incorrect   int
	Unanswered  int
	TimeTakenMs int64
}

// CategoryAggregate aggregates question outcomes per category across attempts.
type CategoryAggregate struct {
	Category   string
	Correct    int
	Incorrect  int
	Unanswered int
}
