// Package stats contains quiz history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

const sparkChars = " .:-=+*#%@"

// AttemptMetrics computes answered accuracy and completion rate for an attempt.
func AttemptMetrics(correct, incorrect, unanswered int) (accuracy, completion float64) {
	answered := correct + incorrect
	total := answered + unanswered
	if answered > 0 {
		accuracy = float64(correct) / float64(answered)
	}
	if total > 0 {
		completion = float64(answered) / float64(total)
	}
	return accuracy, completion
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ScoreSeries returns attempt scores in order, smoothed over window.
func ScoreSeries(attempts []model.AttemptAggregate, window int) []float64 {
	scores := make([]float64, len(attempts))
	for i, a := range attempts {
		scores[i] = float64(a.Score)
	}
	return MovingAverage(scores, window)
}

// Summary holds headline numbers across attempts.
type Summary struct {
	Attempts      int
	AvgScore      float64
	BestScore     int
	AvgAccuracy   float64
	AvgCompletion float64
	AvgTimeTaken  time.Duration
}

// Summarize computes headline numbers across attempts.
func Summarize(attempts []model.AttemptAggregate) Summary {
	if len(attempts) == 0 {
		return Summary{}
	}
	var totalScore, totalAcc, totalCompletion float64
	var totalTime int64
	best := 0
	for _, a := range attempts {
		acc, completion := AttemptMetrics(a.Correct, a.Incorrect, a.Unanswered)
		totalScore += float64(a.Score)
		totalAcc += acc
		totalCompletion += completion
		totalTime += a.TimeTakenMs
		best = max(best, a.Score)
	}
	count := float64(len(attempts))
	return Summary{
		Attempts:      len(attempts),
		AvgScore:      totalScore / count,
		BestScore:     best,
		AvgAccuracy:   totalAcc / count,
		AvgCompletion: totalCompletion / count,
		AvgTimeTaken:  time.Duration(totalTime/int64(len(attempts))) * time.Millisecond,
	}
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Avg Score: %.1f%%", s.AvgScore),
		fmt.Sprintf("Best Score: %d%%", s.BestScore),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Avg Completion: %.1f%%", s.AvgCompletion*100),
		fmt.Sprintf("Avg Time: %s", quiz.FormatTime(int(s.AvgTimeTaken.Seconds()))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a score sparkline for attempts.
func RenderTrend(w io.Writer, attempts []model.AttemptAggregate, window int) error {
	if len(attempts) < 2 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Score trend (window %d)\n%s\n\n", max(window, 1), Sparkline(ScoreSeries(attempts, window))); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints one row per attempt, newest first.
func RenderHistory(w io.Writer, attempts []model.AttemptAggregate, now time.Time) error {
	if len(attempts) == 0 {
		return nil
	}
	headers := []string{"When", "Email", "Score", "Correct", "Incorrect", "Skipped", "Time"}
	rows := make([][]string, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		rows = append(rows, []string{
			humanize.RelTime(a.CompletedAt, now, "ago", "from now"),
			a.Email,
			fmt.Sprintf("%d%%", a.Score),
			fmt.Sprintf("%d", a.Correct),
			fmt.Sprintf("%d", a.Incorrect),
			fmt.Sprintf("%d", a.Unanswered),
			quiz.FormatTime(int(a.TimeTakenMs / 1000)),
		})
	}
	if _, err := fmt.Fprintln(w, "Attempts"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CategoryRows builds table rows sorted by lowest accuracy first.
func CategoryRows(aggs []model.CategoryAggregate) [][]string {
	sorted := make([]model.CategoryAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := categoryAccuracy(sorted[i]), categoryAccuracy(sorted[j])
		if ai == aj {
			return sorted[i].Category < sorted[j].Category
		}
		return ai < aj
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Category
		if label == "" {
			label = "<none>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.1f%%", categoryAccuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", agg.Unanswered),
		})
	}
	return rows
}

// CategoryHeaders are the column titles for CategoryRows.
var CategoryHeaders = []string{"Category", "Accuracy", "Correct", "Incorrect", "Skipped"}

// RenderCategoryTable prints per-category aggregates.
func RenderCategoryTable(w io.Writer, aggs []model.CategoryAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No category stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Category"); err != nil {
		return err
	}
	lines := formatTable(CategoryHeaders, CategoryRows(aggs), map[int]bool{1: true, 2: true, 3: true, 4: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
