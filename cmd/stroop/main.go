// Package main provides the CLI entrypoint for stroop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/stroop/internal/clock"
	"github.com/verte-zerg/stroop/internal/config"
	"github.com/verte-zerg/stroop/internal/engine"
	"github.com/verte-zerg/stroop/internal/export"
	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/logging"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/stats"
	"github.com/verte-zerg/stroop/internal/statsui"
	"github.com/verte-zerg/stroop/internal/store"
	"github.com/verte-zerg/stroop/internal/tui"
)

const (
	defaultDisplayIntervalMs = 1
	defaultExportDir         = "."
	defaultExportFormat      = export.FormatXLSX
	defaultLogLevel          = "info"
	defaultCurveWindow       = 5
)

var (
	testPalette         []string
	testDisplayInterval int
	testExportDir       string
	testExportFormat    string
	testSaveHistory     bool
	logFile             string
	logLevel            string

	reportSession string

	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stroop",
		Short:         "TUI Stroop effect test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringSliceVar(&testPalette, "palette", colorNames(model.DefaultPalette()), "comma-separated color names")
	rootCmd.Flags().IntVar(&testDisplayInterval, "display-interval-ms", defaultDisplayIntervalMs, "timer refresh interval in ms (0 disables)")
	rootCmd.Flags().StringVar(&testExportDir, "export-dir", defaultExportDir, "directory for exported sessions")
	rootCmd.Flags().StringVar(&testExportFormat, "export-format", defaultExportFormat, "export format: xlsx, csv or none")
	rootCmd.Flags().BoolVar(&testSaveHistory, "save-history", true, "record sessions in the history database")
	rootCmd.Flags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path (empty disables logging)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newColorsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySliceConfig(cmd, "palette", &testPalette, fileCfg.Test.Palette)
	applyIntConfig(cmd, "display-interval-ms", &testDisplayInterval, fileCfg.Test.DisplayIntervalMs)
	applyStringConfig(cmd, "export-dir", &testExportDir, fileCfg.Test.ExportDir)
	applyStringConfig(cmd, "export-format", &testExportFormat, fileCfg.Test.ExportFormat)
	applyBoolConfig(cmd, "save-history", &testSaveHistory, fileCfg.Test.SaveHistory)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	cfg := model.Config{
		Palette:         parsePalette(testPalette),
		DisplayInterval: time.Duration(testDisplayInterval) * time.Millisecond,
		ExportDir:       testExportDir,
		ExportFormat:    strings.ToLower(strings.TrimSpace(testExportFormat)),
		SaveHistory:     testSaveHistory,
		LogFile:         logFile,
		LogLevel:        logLevel,
	}
	if testDisplayInterval < 0 {
		return fmt.Errorf("--display-interval-ms must be >= 0")
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	fileExporter, err := export.NewFileExporter(cfg.ExportFormat, cfg.ExportDir)
	if err != nil {
		return err
	}
	exporters := export.Multi{fileExporter}

	if cfg.SaveHistory {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		exporters = append(exporters, st)
	}

	gen := generator.New(cfg.Palette)
	eng := engine.New(gen, clock.System{}, exporters, engine.Options{
		Palette:         cfg.Palette,
		DisplayInterval: cfg.DisplayInterval,
	})
	defer eng.Close()

	logger.Info("starting test",
		zap.Strings("palette", colorNames(cfg.Palette)),
		zap.String("export_format", cfg.ExportFormat),
		zap.String("export_dir", cfg.ExportDir),
		zap.Bool("save_history", cfg.SaveHistory),
	)

	m := tui.NewModel(eng, cfg.Palette, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		m.Shutdown()
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
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

func newColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List supported color names",
		Args:  cobra.NoArgs,
		RunE:  runColorsCmd,
	}
}

func runColorsCmd(cmd *cobra.Command, _ []string) error {
	defaults := model.DefaultPalette()
	for _, c := range model.KnownColors() {
		hex, _ := c.Hex()
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
		line := fmt.Sprintf("%s %-8s %s", swatch, c, hex)
		if defaults.Contains(c) {
			line += "  (default)"
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print congruent vs incongruent results of a stored session",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportSession, "session", "", "session id (default: latest)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, id, ok, err := stats.StoredSessionReport(context.Background(), st, strings.TrimSpace(reportSession))
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		if reportSession != "" {
			return fmt.Errorf("session %q not found", reportSession)
		}
		logErrln("No sessions recorded yet. Run: stroop")
		return nil
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Session %s\n\n", id); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderComparison(out, report, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse session history",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
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

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
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
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# stroop configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# palette = [%s]
# display-interval-ms = %d   # Timer refresh interval; 0 disables the live timer
# export-dir = %q           # Directory for exported sessions
# export-format = %q      # xlsx, csv or none
# save-history = true        # Record sessions for the stats browser

[log]
# file = %q
# level = %q
`,
		quotedNames(model.DefaultPalette()),
		defaultDisplayIntervalMs,
		defaultExportDir,
		defaultExportFormat,
		config.DefaultLogPath(),
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if len(cfg.Palette) < 2 {
		return fmt.Errorf("--palette must contain at least 2 colors")
	}
	if len(cfg.Palette) > model.MaxPaletteSize {
		return fmt.Errorf("--palette must contain at most %d colors", model.MaxPaletteSize)
	}
	seen := make(map[model.Color]struct{}, len(cfg.Palette))
	for _, c := range cfg.Palette {
		if _, ok := c.Hex(); !ok {
			return fmt.Errorf("--palette: unknown color %q (run: stroop colors)", c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("--palette: duplicate color %q", c)
		}
		seen[c] = struct{}{}
	}
	if cfg.DisplayInterval < 0 {
		return fmt.Errorf("--display-interval-ms must be >= 0")
	}
	switch cfg.ExportFormat {
	case export.FormatXLSX, export.FormatCSV, export.FormatNone:
	default:
		return fmt.Errorf("--export-format must be one of xlsx, csv, none")
	}
	if cfg.ExportFormat != export.FormatNone && strings.TrimSpace(cfg.ExportDir) == "" {
		return fmt.Errorf("--export-dir must not be empty")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func parsePalette(names []string) model.Palette {
	palette := make(model.Palette, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		palette = append(palette, model.Color(name))
	}
	return palette
}

func colorNames(p model.Palette) []string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = string(c)
	}
	return names
}

func quotedNames(p model.Palette) string {
	quoted := make([]string, len(p))
	for i, c := range p {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
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
