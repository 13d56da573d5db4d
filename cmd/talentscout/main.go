package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentscout/maya/internal/flow"
	"github.com/talentscout/maya/internal/genai"
	"github.com/talentscout/maya/internal/models"
	"github.com/talentscout/maya/internal/notify"
	"github.com/talentscout/maya/internal/store"
	"github.com/talentscout/maya/internal/tui"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for TalentScout state data
	DefaultStateDir = "/var/lib/talentscout"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "talentscout.db"
	// DefaultLogFileName is the log file written alongside the database
	DefaultLogFileName = "talentscout.log"
)

func main() {
	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Logs go to a file: stdout belongs to the chat interface.
	logCleanup := initializeLogger(flags)
	defer logCleanup()

	// Build module options
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)

	st, err := openStore(storeOpts)
	if err != nil {
		slog.Error("Failed to open interview store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Recruiter review mode: print saved screens and exit.
	if *flags.list {
		if err := listInterviews(st, os.Stdout); err != nil {
			slog.Error("Failed to list interviews", "error", err)
			os.Exit(1)
		}
		return
	}

	gateway, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Error("Failed to initialize GenAI client", "error", err)
		os.Exit(1)
	}

	notifier := buildNotifier(flags)

	engine := flow.NewEngine(gateway)
	state := flow.NewConversationState()

	slog.Info("Bootstrapping TalentScout with configured modules")
	slog.Debug("Module options counts", "store", len(storeOpts), "genai", len(genaiOpts), "sms_enabled", notifier != nil)

	onEnd := makeSessionEndHook(st, notifier)
	if err := tui.Run(engine, state, onEnd); err != nil {
		slog.Error("TalentScout failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("TalentScout exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	OpenAIModel string
	SMSEnabled  bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir  *string
	dbDSN     *string
	openaiKey *string
	model     *string
	smsFollow *bool
	list      *bool
}

// initializeLogger sets up structured logging with debug level, writing
// to a log file so the terminal stays clear for the chat. Returns a
// cleanup function closing the file.
func initializeLogger(flags Flags) func() {
	var w io.Writer = os.Stderr
	cleanup := func() {}

	logPath := filepath.Join(*flags.stateDir, DefaultLogFileName)
	if err := os.MkdirAll(*flags.stateDir, 0755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			w = f
			cleanup = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	return cleanup
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Missing .env is normal outside development.
		_ = err
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("TALENTSCOUT_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		SMSEnabled:  os.Getenv("TWILIO_ACCOUNT_SID") != "",
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
	}

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for TalentScout data (overrides $TALENTSCOUT_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the interview store (overrides $DATABASE_URL)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		model:     flag.String("model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		smsFollow: flag.Bool("sms-follow-up", config.SMSEnabled, "send a follow-up SMS via Twilio after a completed screen"),
		list:      flag.Bool("list", false, "list saved interview records and exit"),
	}

	flag.Parse()

	// Keep the SQLite default inside a relocated state directory.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
	}

	return flags
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN == "" {
		return storeOpts
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
	} else {
		storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	return genaiOpts
}

// openStore picks the backend from the configured options, falling back
// to the in-memory store when no DSN was resolved.
func openStore(storeOpts []store.Option) (store.Store, error) {
	if len(storeOpts) == 0 {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(storeOpts...)
	}
	return store.NewSQLiteStore(storeOpts...)
}

// buildNotifier sets up the Twilio follow-up notifier when enabled.
// Failure to configure it is logged and the feature is skipped.
func buildNotifier(flags Flags) notify.Notifier {
	if !*flags.smsFollow {
		return nil
	}
	n, err := notify.NewTwilioNotifier()
	if err != nil {
		slog.Warn("SMS follow-up disabled", "error", err)
		return nil
	}
	return n
}

// makeSessionEndHook records the finished session and sends the optional
// follow-up SMS. Both are best-effort: errors are logged, never shown to
// the candidate.
func makeSessionEndHook(st store.Store, notifier notify.Notifier) tui.SessionEndHook {
	return func(state *flow.ConversationState) {
		rec := store.InterviewRecord{
			Profile:      state.Profile,
			Questions:    state.Questions,
			Answers:      state.Answers,
			FinalPhase:   state.Phase,
			MessageCount: len(state.History),
			StartedAt:    state.StartedAt,
			CompletedAt:  time.Now(),
		}
		if err := st.SaveInterview(rec); err != nil {
			slog.Error("Failed to save interview record", "error", err)
		}

		if notifier == nil || state.Profile.Phone == "" {
			return
		}
		if !answeredAllQuestions(state) {
			slog.Debug("Skipping follow-up SMS, screen not completed")
			return
		}
		body := notify.FollowUpMessage(state.Profile.FirstName())
		if err := notifier.SendFollowUp(state.Profile.Phone, body); err != nil {
			slog.Error("Failed to send follow-up SMS", "error", err)
		}
	}
}

// listInterviews prints the saved screening records for recruiter
// review. Contact fields are masked the same way the chat sidebar masks
// them.
func listInterviews(st store.Store, w io.Writer) error {
	records, err := st.GetInterviews()
	if err != nil {
		return fmt.Errorf("failed to load interview records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No interview records found.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s\n", rec.ID, rec.CompletedAt.Format(time.RFC3339), rec.Profile.Name)
		fmt.Fprintf(w, "  contact: %s / %s\n", models.MaskEmail(rec.Profile.Email), models.MaskPhone(rec.Profile.Phone))
		fmt.Fprintf(w, "  position: %s (%s, %s years)\n", rec.Profile.Position, rec.Profile.Location, rec.Profile.Experience)
		fmt.Fprintf(w, "  tech stack: %s\n", rec.Profile.TechStack)
		fmt.Fprintf(w, "  final phase: %s, %d messages\n", rec.FinalPhase, rec.MessageCount)
		for i, q := range rec.Questions {
			answer := ""
			if i < len(rec.Answers) {
				answer = rec.Answers[i]
			}
			fmt.Fprintf(w, "  Q%d: %s\n      A: %s\n", i+1, q, answer)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d record(s).\n", len(records))
	return nil
}

// answeredAllQuestions reports whether the candidate reached the end of
// the technical assessment rather than leaving early.
func answeredAllQuestions(state *flow.ConversationState) bool {
	if len(state.Questions) == 0 || len(state.Answers) != len(state.Questions) {
		return false
	}
	for _, a := range state.Answers {
		if a == "" {
			return false
		}
	}
	return state.Phase == models.PhaseEnded && state.Cursor >= len(state.Questions)
}
