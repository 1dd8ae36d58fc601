// Package main provides the CLI entrypoint for tuiquiz.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiquiz/internal/bank"
	"github.com/verte-zerg/tuiquiz/internal/config"
	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/proxy"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/stats"
	"github.com/verte-zerg/tuiquiz/internal/statsui"
	"github.com/verte-zerg/tuiquiz/internal/store"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
	"github.com/verte-zerg/tuiquiz/internal/tui"
)

const (
	maxAmount          = 50
	defaultCurveWindow = 5
)

var (
	quizEmail         string
	quizAmount        int
	quizCategory      int
	quizDifficulty    string
	quizType          string
	quizTimeLimit     time.Duration
	quizAPIURL        string
	quizTimeout       time.Duration
	quizQuestionsFile string

	statsEmail       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	serveAddr     string
	serveUpstream string
	serveCacheTTL time.Duration
	serveTimeout  time.Duration

	categoriesAPIURL string

	fetchOut        string
	fetchAppend     bool
	fetchAmount     int
	fetchCategory   int
	fetchDifficulty string
	fetchType       string
	fetchAPIURL     string
	fetchTimeout    time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiquiz",
		Short:         "Terminal trivia quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().StringVar(&quizEmail, "email", "", "email to prefill on the start screen")
	rootCmd.Flags().IntVar(&quizAmount, "amount", trivia.DefaultAmount, "questions per quiz")
	rootCmd.Flags().IntVar(&quizCategory, "category", 0, "category id (0 for any, see: tuiquiz categories)")
	rootCmd.Flags().StringVar(&quizDifficulty, "difficulty", "", "easy, medium or hard (empty for any)")
	rootCmd.Flags().StringVar(&quizType, "type", "", "multiple or boolean (empty for any)")
	rootCmd.Flags().DurationVar(&quizTimeLimit, "time-limit", quiz.DefaultTimeLimit, "time allowed per quiz")
	rootCmd.Flags().StringVar(&quizAPIURL, "api-url", trivia.DefaultBaseURL, "trivia API base URL")
	rootCmd.Flags().DurationVar(&quizTimeout, "timeout", trivia.DefaultTimeout, "question fetch timeout")
	rootCmd.Flags().StringVar(&quizQuestionsFile, "questions-file", "", "load questions from a saved API response instead of the network")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newFetchCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyQuizConfig(cmd, fileCfg.Quiz)

	cfg := model.Config{
		Email:         strings.TrimSpace(quizEmail),
		Amount:        quizAmount,
		Category:      quizCategory,
		Difficulty:    strings.ToLower(strings.TrimSpace(quizDifficulty)),
		Type:          strings.ToLower(strings.TrimSpace(quizType)),
		TimeLimit:     quizTimeLimit,
		APIURL:        quizAPIURL,
		Timeout:       quizTimeout,
		QuestionsFile: quizQuestionsFile,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	model := tui.NewModel(cfg, source, st, quiz.New())
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSource(cfg model.Config) (tui.Source, error) {
	if cfg.QuestionsFile == "" {
		return trivia.NewClient(cfg.APIURL, cfg.Timeout), nil
	}
	questions, err := bank.LoadQuestions(cfg.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions file %s: %w", cfg.QuestionsFile, err)
	}
	if cfg.Category > 0 {
		logErrln("--category is ignored with --questions-file")
	}
	return bank.NewSource(questions, nil), nil
}

func applyQuizConfig(cmd *cobra.Command, fc config.QuizConfig) {
	applyStringConfig(cmd, "email", &quizEmail, fc.Email)
	applyIntConfig(cmd, "amount", &quizAmount, fc.Amount)
	applyIntConfig(cmd, "category", &quizCategory, fc.Category)
	applyStringConfig(cmd, "difficulty", &quizDifficulty, fc.Difficulty)
	applyStringConfig(cmd, "type", &quizType, fc.Type)
	applyDurationConfig(cmd, "time-limit", &quizTimeLimit, fc.TimeLimit)
	applyStringConfig(cmd, "api-url", &quizAPIURL, fc.APIURL)
	applyDurationConfig(cmd, "timeout", &quizTimeout, fc.Timeout)
	applyStringConfig(cmd, "questions-file", &quizQuestionsFile, fc.QuestionsFile)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show quiz history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsEmail, "email", "", "email filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the score trend")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig(statsEmail, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return renderPlainReport(cmd.OutOrStdout(), report, cfg.CurveWindow, time.Now())
	}

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func historyConfig(email, since string, last, window int) (model.HistoryConfig, error) {
	email = strings.TrimSpace(email)
	if email != "" && !quiz.ValidateEmail(email) {
		return model.HistoryConfig{}, fmt.Errorf("invalid --email value %q", email)
	}
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.HistoryConfig{
		Email:       email,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
	}, nil
}

func renderPlainReport(w io.Writer, report stats.Report, window int, now time.Time) error {
	if err := stats.RenderSummary(w, report.Attempts); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if len(report.Attempts) == 0 {
		return nil
	}
	if err := stats.RenderTrend(w, report.Attempts, window); err != nil {
		return fmt.Errorf("failed to write trend: %w", err)
	}
	if err := stats.RenderHistory(w, report.Attempts, now); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := stats.RenderCategoryTable(w, report.CategoryAggs); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	if len(report.TopCategories) > 0 {
		if _, err := fmt.Fprintf(w, "Most played categories: %s\n", strings.Join(report.TopCategories, ", ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if len(report.WeakCategories) > 0 {
		if _, err := fmt.Fprintf(w, "Weakest categories: %s\n", strings.Join(report.WeakCategories, ", ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a caching passthrough to the trivia API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", proxy.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&serveUpstream, "upstream", trivia.DefaultBaseURL, "upstream trivia API base URL")
	cmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", proxy.DefaultCacheTTL, "how long category listings are cached")
	cmd.Flags().DurationVar(&serveTimeout, "timeout", trivia.DefaultTimeout, "upstream request timeout")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyServeConfig(cmd, fileCfg.Serve)

	cfg := model.ServeConfig{
		Addr:     serveAddr,
		Upstream: serveUpstream,
		CacheTTL: serveCacheTTL,
		Timeout:  serveTimeout,
	}
	if cfg.Upstream == "" {
		return fmt.Errorf("--upstream must not be empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logErrf("Serving %s on %s (try %s/api/api.php)\n", cfg.Upstream, cfg.Addr, listenURL(cfg.Addr))
	srv := proxy.New(cfg.Upstream, cfg.Timeout, cfg.CacheTTL)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func applyServeConfig(cmd *cobra.Command, fc config.ServeConfig) {
	applyStringConfig(cmd, "addr", &serveAddr, fc.Addr)
	applyStringConfig(cmd, "upstream", &serveUpstream, fc.Upstream)
	applyDurationConfig(cmd, "cache-ttl", &serveCacheTTL, fc.CacheTTL)
	applyDurationConfig(cmd, "timeout", &serveTimeout, fc.Timeout)
}

func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List trivia categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
	cmd.Flags().StringVar(&categoriesAPIURL, "api-url", trivia.DefaultBaseURL, "trivia API base URL")
	return cmd
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "api-url", &categoriesAPIURL, fileCfg.Quiz.APIURL)

	timeout := trivia.DefaultTimeout
	if fileCfg.Quiz.Timeout != nil {
		timeout = fileCfg.Quiz.Timeout.Duration
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	categories, err := trivia.NewClient(categoriesAPIURL, timeout).Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	for _, c := range categories {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download questions into a local bank for --questions-file",
		Args:  cobra.NoArgs,
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchOut, "out", config.DefaultBankPath(), "bank file to write")
	cmd.Flags().BoolVar(&fetchAppend, "append", false, "merge into an existing bank instead of replacing it")
	cmd.Flags().IntVar(&fetchAmount, "amount", maxAmount, "questions to download")
	cmd.Flags().IntVar(&fetchCategory, "category", 0, "category id (0 for any)")
	cmd.Flags().StringVar(&fetchDifficulty, "difficulty", "", "easy, medium or hard (empty for any)")
	cmd.Flags().StringVar(&fetchType, "type", "", "multiple or boolean (empty for any)")
	cmd.Flags().StringVar(&fetchAPIURL, "api-url", trivia.DefaultBaseURL, "trivia API base URL")
	cmd.Flags().DurationVar(&fetchTimeout, "timeout", trivia.DefaultTimeout, "request timeout")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "api-url", &fetchAPIURL, fileCfg.Quiz.APIURL)
	applyDurationConfig(cmd, "timeout", &fetchTimeout, fileCfg.Quiz.Timeout)

	cfg := model.Config{
		Amount:     fetchAmount,
		Category:   fetchCategory,
		Difficulty: strings.ToLower(strings.TrimSpace(fetchDifficulty)),
		Type:       strings.ToLower(strings.TrimSpace(fetchType)),
		TimeLimit:  quiz.DefaultTimeLimit,
		APIURL:     fetchAPIURL,
		Timeout:    fetchTimeout,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if fetchOut == "" {
		return fmt.Errorf("--out must not be empty")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	logErrln("Fetching questions...")
	questions, err := trivia.NewClient(cfg.APIURL, cfg.Timeout).FetchQuestions(ctx, trivia.Params{
		Amount:     cfg.Amount,
		Category:   cfg.Category,
		Difficulty: cfg.Difficulty,
		Type:       cfg.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch questions: %w", err)
	}

	if fetchAppend {
		existing, err := bank.LoadQuestions(fetchOut)
		switch {
		case err == nil:
			questions = bank.Merge(existing, questions)
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("failed to read existing bank: %w", err)
		}
	}
	if err := bank.SaveQuestions(fetchOut, questions); err != nil {
		return err
	}
	logErrf("Wrote %d questions to %s\n", len(questions), fetchOut)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# email = "you@example.com"   # Prefilled on the start screen
# amount = %d                 # Questions per quiz (1-%d)
# category = 0                # Category id, 0 for any (tuiquiz categories)
# difficulty = ""             # easy, medium, hard or empty for any
# type = ""                   # multiple, boolean or empty for any
# time-limit = %q             # Time allowed per quiz
# api-url = %q
# timeout = %q                # Question fetch timeout
# questions-file = ""         # Saved API response to use offline

[serve]
# addr = %q
# upstream = %q
# cache-ttl = %q
# timeout = %q
`,
		trivia.DefaultAmount,
		maxAmount,
		quiz.DefaultTimeLimit.String(),
		trivia.DefaultBaseURL,
		trivia.DefaultTimeout.String(),
		proxy.DefaultAddr,
		trivia.DefaultBaseURL,
		proxy.DefaultCacheTTL.String(),
		trivia.DefaultTimeout.String(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Email != "" {
		if err := quiz.CheckEmail(cfg.Email); err != nil {
			return fmt.Errorf("invalid --email: %w", err)
		}
	}
	if cfg.Amount < 1 || cfg.Amount > maxAmount {
		return fmt.Errorf("--amount must be between 1 and %d", maxAmount)
	}
	if cfg.Category < 0 {
		return fmt.Errorf("--category must be >= 0")
	}
	switch model.Difficulty(cfg.Difficulty) {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return fmt.Errorf("--difficulty must be easy, medium or hard")
	}
	switch cfg.Type {
	case "", "multiple", "boolean":
	default:
		return fmt.Errorf("--type must be multiple or boolean")
	}
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.QuestionsFile == "" && cfg.APIURL == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
