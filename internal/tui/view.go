package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
)

const (
	navColumns     = 5
	lowTimeWarning = 5 * time.Minute
	maxContentW    = 80
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	accentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	correctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	selectedStyle   = accentStyle.Bold(true)
	chosenStyle     = correctStyle.Bold(true)
	navCurrentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#C89A3A")).Bold(true)
	navAnswerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	navVisitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	navFreshStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	boxStyle        = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenStart:
		content = m.renderStart()
	case screenLoading:
		content = m.renderLoading()
	case screenQuiz:
		content = m.renderQuiz()
	case screenResults:
		return m.renderResults()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return maxContentW
	}
	return max(20, min(maxContentW, m.width-8))
}

func (m *Model) renderStart() string {
	lines := []string{
		titleStyle.Render("Trivia Quiz"),
		"",
		mutedStyle.Render(fmt.Sprintf("%d questions · %s · %s", m.questionCount(), m.difficultyLabel(), formatLimit(m.config.TimeLimit))),
		"",
		m.emailInput.View(),
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(indentLines(wrapText(m.errMsg, m.contentWidth()), "", "")))
	}
	lines = append(lines, "", footerStyle.Render("enter start · esc quit"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderLoading() string {
	return m.spinner.View() + " " + textStyle.Render("Fetching questions...")
}

func (m *Model) renderQuiz() string {
	q, ok := m.session.CurrentQuestion()
	if !ok {
		return mutedStyle.Render("No questions.")
	}
	width := m.contentWidth()
	parts := []string{
		m.renderQuizHeader(),
		mutedStyle.Render(fmt.Sprintf("%s · %s", q.Category, q.Difficulty)),
		"",
		titleStyle.Render(indentLines(wrapText(q.Question, width), "", "")),
		"",
		m.renderOptions(q, width),
		"",
		renderNavGrid(m.session),
		"",
	}
	if m.confirmSubmit {
		unanswered := len(m.session.Questions) - m.session.AnsweredCount()
		prompt := "Submit now? (y/N)"
		if unanswered > 0 {
			prompt = fmt.Sprintf("%d unanswered. Submit now? (y/N)", unanswered)
		}
		parts = append(parts, accentStyle.Render(prompt))
	} else {
		parts = append(parts, footerStyle.Render("↑/↓ choose · enter/1-9 answer · ←/→ move · u next unanswered · s submit · q quit"))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderQuizHeader() string {
	remaining := int(m.session.Remaining / time.Second)
	timer := quiz.FormatTime(remaining)
	if m.session.Remaining <= lowTimeWarning {
		timer = errorStyle.Render(timer)
	} else {
		timer = accentStyle.Render(timer)
	}
	segments := []string{
		fmt.Sprintf("Question %d/%d", m.session.Current+1, len(m.session.Questions)),
		fmt.Sprintf("Answered %d/%d", m.session.AnsweredCount(), len(m.session.Questions)),
	}
	return footerStyle.Render(strings.Join(segments, "  ")) + "  " + timer
}

func (m *Model) renderOptions(q model.ProcessedQuestion, width int) string {
	lines := make([]string, 0, len(q.Options))
	for i, opt := range q.Options {
		marker := "  "
		if i == m.cursor {
			marker = "› "
		}
		label := fmt.Sprintf("%d. ", i+1)
		text := indentLines(wrapText(opt, width-len(marker)-len(label)), "", strings.Repeat(" ", len(marker)+len(label)))
		style := textStyle
		chosen := q.UserAnswer != nil && *q.UserAnswer == opt
		switch {
		case chosen:
			style = chosenStyle
		case i == m.cursor:
			style = selectedStyle
		}
		lines = append(lines, style.Render(marker+label+text))
	}
	return strings.Join(lines, "\n")
}

// renderNavGrid shows one cell per question: current, answered, visited, unvisited.
func renderNavGrid(s quiz.Session) string {
	if len(s.Questions) == 0 {
		return ""
	}
	cellWidth := len(fmt.Sprintf("%d", len(s.Questions))) + 2
	var rows []string
	var row []string
	for i, q := range s.Questions {
		label := fmt.Sprintf("%*d", cellWidth-2, q.ID)
		var cell string
		switch {
		case i == s.Current:
			cell = navCurrentStyle.Render("[" + label + "]")
		case q.IsAnswered:
			cell = navAnswerStyle.Render("[" + label + "]")
		case q.IsVisited:
			cell = navVisitStyle.Render(" " + label + " ")
		default:
			cell = navFreshStyle.Render(" " + label + " ")
		}
		row = append(row, cell)
		if len(row) == navColumns {
			rows = append(rows, strings.Join(row, " "))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderResults() string {
	header := m.renderResultsHeader()
	footer := footerStyle.Render("↑/↓ scroll · r new quiz · q quit")
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, renderResultDetails(m.summary.Results, maxContentW), footer}, "\n")
	}
	return strings.Join([]string{header, m.resultsView.View(), footer}, "\n")
}

func (m *Model) renderResultsHeader() string {
	s := m.summary
	scoreStyle := correctStyle
	if s.Score < 50 {
		scoreStyle = errorStyle
	}
	lines := []string{
		titleStyle.Render("Results") + "  " + mutedStyle.Render(s.Email),
		scoreStyle.Bold(true).Render(fmt.Sprintf("Score %d%%", s.Score)) + "  " +
			footerStyle.Render(fmt.Sprintf("Correct %d · Incorrect %d · Unanswered %d · Total %d",
				s.CorrectAnswers, s.IncorrectAnswers, s.UnansweredQuestions, s.TotalQuestions)),
		footerStyle.Render(fmt.Sprintf("Time taken %s of %s · Completed %s",
			quiz.FormatTime(int(s.TimeTaken/time.Second)), formatLimit(s.TimeLimit), s.CompletedAt.Format("2006-01-02 15:04"))),
		"",
	}
	return strings.Join(lines, "\n")
}

func renderResultDetails(results []model.QuestionResult, width int) string {
	width = max(20, width-2)
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		mark := errorStyle.Render("✗")
		switch {
		case r.IsCorrect:
			mark = correctStyle.Render("✓")
		case r.UserAnswer == quiz.NotAnswered:
			mark = mutedStyle.Render("–")
		}
		prefix := fmt.Sprintf("%d. ", r.QuestionID)
		b.WriteString(mark + " " + textStyle.Render(indentLines(wrapText(r.Question, width-2-len(prefix)), prefix, strings.Repeat(" ", 2+len(prefix)))))
		answer := r.UserAnswer
		if answer == quiz.NotAnswered {
			answer = "Not answered"
		}
		b.WriteString("\n" + mutedStyle.Render("   Your answer: ") + answer)
		if !r.IsCorrect {
			b.WriteString("\n" + mutedStyle.Render("   Correct answer: ") + correctStyle.Render(r.CorrectAnswer))
		}
	}
	return b.String()
}

func (m *Model) questionCount() int {
	if m.config.Amount > 0 {
		return m.config.Amount
	}
	return trivia.DefaultAmount
}

func (m *Model) difficultyLabel() string {
	if m.config.Difficulty == "" {
		return "any difficulty"
	}
	return m.config.Difficulty
}

func formatLimit(d time.Duration) string {
	if d <= 0 {
		d = quiz.DefaultTimeLimit
	}
	return quiz.FormatTime(int(d / time.Second))
}
