// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
)

type screen int

const (
	screenStart screen = iota
	screenLoading
	screenQuiz
	screenResults
)

// Source supplies raw questions for a new quiz.
type Source interface {
	FetchQuestions(ctx context.Context, params trivia.Params) ([]model.RawQuestion, error)
}

// Recorder persists finished attempts.
type Recorder interface {
	InsertAttempt(ctx context.Context, summary model.ResultsSummary, startedAt time.Time) (string, error)
}

type questionsLoadedMsg struct {
	questions []model.RawQuestion
}

type questionsFailedMsg struct {
	err error
}

type tickMsg struct {
	countdown *quiz.Countdown
	at        time.Time
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	config    model.Config
	source    Source
	recorder  Recorder
	processor *quiz.Processor
	now       func() time.Time
	interval  time.Duration

	width  int
	height int

	screen     screen
	emailInput textinput.Model
	spinner    spinner.Model
	errMsg     string

	session       quiz.Session
	countdown     *quiz.Countdown
	cursor        int
	confirmSubmit bool

	summary     model.ResultsSummary
	attemptID   string
	resultsView viewport.Model
}

// NewModel constructs a quiz TUI model.
func NewModel(cfg model.Config, source Source, recorder Recorder, processor *quiz.Processor) *Model {
	input := textinput.New()
	input.Prompt = "Email: "
	input.Placeholder = "you@example.com"
	input.CharLimit = 254
	input.SetValue(cfg.Email)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = accentStyle

	return &Model{
		config:      cfg,
		source:      source,
		recorder:    recorder,
		processor:   processor,
		now:         time.Now,
		interval:    time.Second,
		screen:      screenStart,
		emailInput:  input,
		spinner:     spin,
		resultsView: viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutResults()
		return m, nil
	case questionsLoadedMsg:
		return m, m.startQuiz(msg.questions)
	case questionsFailedMsg:
		if m.screen != screenLoading {
			return m, nil
		}
		m.screen = screenStart
		m.errMsg = describeFetchError(msg.err)
		return m, textinput.Blink
	case tickMsg:
		return m, m.handleTick(msg)
	case spinner.TickMsg:
		if m.screen != screenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.stopCountdown()
			return m, tea.Quit
		}
		switch m.screen {
		case screenStart:
			return m.updateStart(msg)
		case screenLoading:
			if msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		case screenQuiz:
			return m.updateQuiz(msg)
		case screenResults:
			return m.updateResults(msg)
		}
	}
	if m.screen == screenStart {
		var cmd tea.Cmd
		m.emailInput, cmd = m.emailInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateStart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		email := m.emailInput.Value()
		if err := quiz.CheckEmail(email); err != nil {
			var verr quiz.ValidationError
			if errors.As(err, &verr) {
				m.errMsg = "Please enter a valid email address (" + verr.Message + ")."
			} else {
				m.errMsg = err.Error()
			}
			return m, nil
		}
		m.errMsg = ""
		m.config.Email = email
		m.screen = screenLoading
		return m, tea.Batch(m.fetchQuestions(), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	return m, cmd
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmSubmit {
		m.confirmSubmit = false
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.finish()
		}
		return m, nil
	}
	q, ok := m.session.CurrentQuestion()
	if !ok {
		return m, m.finish()
	}
	switch key := msg.String(); key {
	case "q":
		m.stopCountdown()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.answer(m.cursor)
	case "right", "l", "n", "tab":
		m.moveTo(m.session.Current + 1)
	case "left", "h", "p", "shift+tab":
		m.moveTo(m.session.Current - 1)
	case "home":
		m.moveTo(0)
	case "end":
		m.moveTo(len(m.session.Questions) - 1)
	case "u":
		m.moveTo(nextUnanswered(m.session))
	case "s":
		m.confirmSubmit = true
	default:
		if idx, err := strconv.Atoi(key); err == nil && idx >= 1 && idx <= len(q.Options) {
			m.cursor = idx - 1
			m.answer(m.cursor)
		}
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		m.screen = screenStart
		m.errMsg = ""
		m.session = quiz.Session{}
		m.emailInput.Focus()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.resultsView, cmd = m.resultsView.Update(msg)
	return m, cmd
}

func (m *Model) fetchQuestions() tea.Cmd {
	source := m.source
	params := trivia.Params{
		Amount:     m.config.Amount,
		Category:   m.config.Category,
		Difficulty: m.config.Difficulty,
		Type:       m.config.Type,
	}
	timeout := m.config.Timeout
	if timeout <= 0 {
		timeout = trivia.DefaultTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		questions, err := source.FetchQuestions(ctx, params)
		if err != nil {
			return questionsFailedMsg{err: err}
		}
		if len(questions) == 0 {
			return questionsFailedMsg{err: fmt.Errorf("no questions returned")}
		}
		return questionsLoadedMsg{questions: questions}
	}
}

func (m *Model) startQuiz(raw []model.RawQuestion) tea.Cmd {
	if m.screen != screenLoading {
		return nil
	}
	m.stopCountdown()
	questions := m.processor.Process(raw)
	m.session = quiz.NewSession(m.config.Email, questions, m.config.TimeLimit, m.now())
	m.cursor = 0
	m.confirmSubmit = false
	m.attemptID = ""
	m.screen = screenQuiz
	m.countdown = quiz.NewCountdown(m.interval)
	return waitForTick(m.countdown)
}

func waitForTick(c *quiz.Countdown) tea.Cmd {
	return func() tea.Msg {
		at, ok := c.Wait()
		if !ok {
			return nil
		}
		return tickMsg{countdown: c, at: at}
	}
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.screen != screenQuiz || msg.countdown == nil || msg.countdown != m.countdown {
		return nil
	}
	var expired bool
	m.session, expired = m.session.Tick(msg.countdown.Interval())
	if expired {
		return m.finish()
	}
	return waitForTick(m.countdown)
}

// finish is the single completion path for manual submit and time-up.
func (m *Model) finish() tea.Cmd {
	if m.screen != screenQuiz {
		return nil
	}
	m.stopCountdown()
	m.confirmSubmit = false
	m.session = m.session.Finish()
	m.summary = quiz.Score(m.session, m.now())
	if m.recorder != nil {
		id, err := m.recorder.InsertAttempt(context.Background(), m.summary, m.session.StartedAt)
		if err != nil {
			logErrf("failed to save attempt: %v\n", err)
		}
		m.attemptID = id
	}
	m.screen = screenResults
	m.layoutResults()
	m.resultsView.GotoTop()
	return nil
}

func (m *Model) stopCountdown() {
	if m.countdown != nil {
		m.countdown.Stop()
	}
}

func (m *Model) answer(idx int) {
	q, ok := m.session.CurrentQuestion()
	if !ok || idx < 0 || idx >= len(q.Options) {
		return
	}
	next, err := m.session.Answer(q.Options[idx])
	if err != nil {
		logErrf("failed to record answer: %v\n", err)
		return
	}
	m.session = next
}

func (m *Model) moveTo(i int) {
	next := m.session.Goto(i)
	if next.Current == m.session.Current && i != m.session.Current {
		return
	}
	m.session = next
	m.cursor = 0
	if q, ok := m.session.CurrentQuestion(); ok && q.UserAnswer != nil {
		for idx, opt := range q.Options {
			if opt == *q.UserAnswer {
				m.cursor = idx
				break
			}
		}
	}
}

// nextUnanswered returns the first unanswered question after the current one,
// wrapping around; the current index when all are answered.
func nextUnanswered(s quiz.Session) int {
	n := len(s.Questions)
	for step := 1; step <= n; step++ {
		i := (s.Current + step) % n
		if !s.Questions[i].IsAnswered {
			return i
		}
	}
	return s.Current
}

func (m *Model) layoutResults() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	header := lipgloss.Height(m.renderResultsHeader())
	m.resultsView.Width = m.width
	m.resultsView.Height = max(1, m.height-header-2)
	if m.screen == screenResults {
		m.resultsView.SetContent(renderResultDetails(m.summary.Results, m.width))
	}
}

func describeFetchError(err error) string {
	var respErr *trivia.ResponseError
	switch {
	case errors.Is(err, trivia.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "The question server took too long to respond. Please try again."
	case errors.As(err, &respErr):
		return fmt.Sprintf("The question server refused the request: %s.", respErr.Error())
	default:
		return fmt.Sprintf("Could not load questions: %v", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
