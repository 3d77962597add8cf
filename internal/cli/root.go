package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/config"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/tui"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	logLevel   string
	logFile    string
	logConsole bool

	cfg         *config.Config
	application *app.App
)

// newApp builds the App for a run; tests swap it for one with in-memory tokens
var newApp = app.New

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Taskboard - terminal client for your projects and tasks",
	Long: `Taskboard talks to the task backend from your terminal.

Run 'taskboard' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Flags given on the command line are persisted
		overrides := map[string]func(){
			"api-url":     func() { cfg.APIURL = apiURL },
			"log-level":   func() { cfg.LogLevel = logLevel },
			"log-file":    func() { cfg.LogFile = logFile },
			"log-console": func() { cfg.LogConsole = logConsole },
		}
		changed := false
		for name, apply := range overrides {
			if cmd.Flags().Changed(name) {
				apply()
				changed = true
			}
		}
		if changed {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole
		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		application, err = newApp(cfg)
		if err != nil {
			return err
		}

		logger.Info("Taskboard started", logger.F("command", cmd.Name()), logger.F("api", cfg.APIURL))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Launching TUI")
		m := tui.NewModel(cmd.Context(), application)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	shutdown()
	return err
}

func shutdown() {
	if application != nil {
		if err := application.Close(); err != nil {
			logger.Warn("Failed to close app", logger.F("error", err))
		}
		application = nil
	}
	logger.Info("Taskboard exiting")
	_ = logger.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (saved to config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(clearCmd)
}
