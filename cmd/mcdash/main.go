// Package main provides the CLI entrypoint for mcdash.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mcdash/internal/action"
	"github.com/verte-zerg/mcdash/internal/api"
	"github.com/verte-zerg/mcdash/internal/config"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/dashui"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
	"github.com/verte-zerg/mcdash/internal/store"
)

const (
	defaultBaseURL  = "http://localhost:8000/api"
	defaultLogLevel = "info"
	defaultLocale   = "en"
)

var (
	configPath  string
	apiBaseURL  string
	apiToken    string
	apiTimeout  string
	logLevel    string
	dbPath      string
	leadType    string
	pageSize    int
	exportDir   string
	forceColors bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mcdash",
		Short:         "Email campaign and contact dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&apiBaseURL, "base-url", defaultBaseURL, "backend API base URL")
	flags.StringVar(&apiToken, "token", "", "backend API bearer token")
	flags.StringVar(&apiTimeout, "timeout", api.DefaultTimeout.String(), "per-request timeout")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "action journal database path")
	flags.StringVar(&leadType, "lead-type", model.AllLeadTypes, "lead type id or 'all'")
	flags.StringVar(&exportDir, "export-dir", "", "directory for CSV exports (default: current directory)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", pipeline.DefaultPageSize, "rows per page")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLeadTypesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCampaignsCmd())
	rootCmd.AddCommand(newContactsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// settings is the merged result of config file, environment and flags.
type settings struct {
	baseURL      string
	token        string
	timeout      time.Duration
	leadType     string
	pageSize     int
	campaignSort pipeline.SortState
	contactSort  pipeline.SortState
	exportDir    string
	perms        model.Permissions
	logLevel     slog.Level
	logFile      string
	dbPath       string
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &apiBaseURL, fileCfg.API.BaseURL)
	applyStringConfig(cmd, "token", &apiToken, fileCfg.API.Token)
	applyStringConfig(cmd, "timeout", &apiTimeout, fileCfg.API.Timeout)
	applyStringConfig(cmd, "lead-type", &leadType, fileCfg.Dashboard.LeadType)
	applyIntConfig(cmd, "page-size", &pageSize, fileCfg.Dashboard.PageSize)
	applyStringConfig(cmd, "export-dir", &exportDir, fileCfg.Export.Dir)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	timeout, err := config.APIConfig{Timeout: &apiTimeout}.TimeoutDuration()
	if err != nil {
		return settings{}, err
	}
	level, err := config.ParseLogLevel(logLevel)
	if err != nil {
		return settings{}, err
	}
	if pageSize <= 0 {
		return settings{}, fmt.Errorf("--page-size must be > 0")
	}

	s := settings{
		baseURL:      strings.TrimSpace(apiBaseURL),
		token:        strings.TrimSpace(apiToken),
		timeout:      timeout,
		leadType:     strings.TrimSpace(leadType),
		pageSize:     pageSize,
		campaignSort: dashboard.DefaultCampaignSort,
		contactSort:  dashboard.DefaultContactSort,
		exportDir:    exportDir,
		perms:        fileCfg.Permissions.Resolve(),
		logLevel:     level,
		logFile:      config.DefaultLogPath(),
		dbPath:       dbPath,
	}
	if s.leadType == "" {
		s.leadType = model.AllLeadTypes
	}
	if s.exportDir == "" {
		s.exportDir = config.DefaultExportDir()
	}
	if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
		s.logFile = *fileCfg.Log.File
	}
	if spec := fileCfg.Dashboard.CampaignSort; spec != nil && *spec != "" {
		if s.campaignSort, err = pipeline.ParseSortState(*spec, pipeline.IsCampaignSortField); err != nil {
			return settings{}, fmt.Errorf("invalid dashboard.campaign-sort: %w", err)
		}
	}
	if spec := fileCfg.Dashboard.ContactSort; spec != nil && *spec != "" {
		if s.contactSort, err = pipeline.ParseSortState(*spec, pipeline.IsContactSortField); err != nil {
			return settings{}, fmt.Errorf("invalid dashboard.contact-sort: %w", err)
		}
	}
	locale := defaultLocale
	if fileCfg.Dashboard.Locale != nil && *fileCfg.Dashboard.Locale != "" {
		locale = *fileCfg.Dashboard.Locale
	}
	format.SetLocale(locale)
	return s, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newClient(s settings, logger *slog.Logger) (*api.Client, error) {
	client, err := api.New(api.Options{
		BaseURL: s.baseURL,
		Token:   s.token,
		Timeout: s.timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// session bundles what every backend-facing command needs.
type session struct {
	settings
	log        *slog.Logger
	client     *api.Client
	dispatcher *action.Dispatcher
	store      *store.Store
}

// openSession loads settings and builds a session logging to logOut.
func openSession(cmd *cobra.Command, logOut io.Writer, withJournal bool) (*session, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return newSession(s, logOut, withJournal)
}

// newSession builds the client. withJournal also opens the action journal and
// wires it into the dispatcher.
func newSession(s settings, logOut io.Writer, withJournal bool) (*session, error) {
	logger := newLogger(logOut, s.logLevel)
	client, err := newClient(s, logger)
	if err != nil {
		return nil, err
	}
	sess := &session{settings: s, log: logger, client: client}
	opts := []action.Option{action.WithPermissions(s.perms), action.WithLogger(logger)}
	if withJournal {
		st, err := store.Open(s.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		sess.store = st
		opts = append(opts, action.WithJournal(st))
	}
	sess.dispatcher = action.New(client, opts...)
	return sess, nil
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if cerr := s.store.Close(); cerr != nil {
		s.log.Warn("failed to close db", slog.String("err", cerr.Error()))
	}
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logFile, err := openLogFile(s.logFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	sess, err := newSession(s, logFile, true)
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.log.Info("dashboard started", slog.String("base_url", s.baseURL), slog.String("lead_type", s.leadType))

	filters := dashboard.NewFilterState(sess.pageSize)
	filters.CampaignSort = sess.campaignSort
	filters.ContactSort = sess.contactSort

	m := dashui.NewModel(dashui.Options{
		Context:   cmd.Context(),
		Loader:    dashboard.NewLoader(sess.client, sess.log),
		Actions:   sess.dispatcher,
		LeadType:  sess.leadType,
		Filters:   filters,
		ExportDir: sess.exportDir,
		Logger:    sess.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// openLogFile opens the dashboard log for appending. The alternate screen owns
// the terminal while the dashboard runs, so logs cannot go to stderr.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
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
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
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
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mcdash configuration
# Uncomment a value to enable it. Environment variables (MCDASH_*) override
# config values and CLI flags override both.

[api]
# base-url = %q    # Backend API base URL
# token = ""                                # Bearer token (or MCDASH_API_TOKEN)
# timeout = %q                           # Per-request timeout

[dashboard]
# lead-type = %q          # Lead type id or "all"
# page-size = %d            # Rows per page
# campaign-sort = "send_time desc"
# contact-sort = "last_synced_at desc"
# locale = %q             # Number formatting locale

[export]
# dir = "."                 # Directory for CSV exports

[permissions]
# email_sync_contacts = true
# email_sync_campaigns = true
# email_view_campaign = true
# email_archive_campaign = true
# email_export_csv = true

[log]
# level = %q             # debug, info, warn, error
# file = ""                 # Dashboard log file
`,
		defaultBaseURL,
		api.DefaultTimeout.String(),
		model.AllLeadTypes,
		pipeline.DefaultPageSize,
		defaultLocale,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
