package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdxmph/tasks-tui/internal/config"
	_ "github.com/pdxmph/tasks-tui/internal/db"
	"github.com/pdxmph/tasks-tui/internal/logging"
	"github.com/pdxmph/tasks-tui/internal/storage"
	"github.com/pdxmph/tasks-tui/internal/tracker"
	"github.com/pdxmph/tasks-tui/internal/tui"
)

var Version = "dev"

// app is the state shared by every subcommand
type app struct {
	configPath string
	cfg        *config.Config
	backend    storage.Backend
	store      *tracker.Store
	log        logrus.FieldLogger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "tasks-tui",
		Short:         "Track tasks by area, priority and responsible",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")
			return a.runTUI(demo)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.Path(), "Path to config file")
	rootCmd.Flags().Bool("demo", false, "Run the interface on in-memory sample tasks")

	rootCmd.AddCommand(initCmd(a))
	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(editCmd(a))
	rootCmd.AddCommand(toggleCmd(a))
	rootCmd.AddCommand(removeCmd(a))
	rootCmd.AddCommand(attachCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(areasCmd(a))
	rootCmd.AddCommand(collaboratorsCmd(a))
	rootCmd.AddCommand(infoCmd(a))

	if err := rootCmd.Execute(); err != nil {
		a.close()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and starts logging
func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}

	if err := logging.Init(logging.Options{
		Path:       cfg.Log.Path,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("starting log: %w", err)
	}

	a.cfg = cfg
	a.log = logging.Logger.WithField("backend", cfg.Database.Backend)
	return nil
}

// open loads config, opens the storage backend and the task store
func (a *app) open() error {
	if a.store != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}

	backend, err := storage.Open(a.cfg.Database.Backend, a.cfg.Database.Path, a.log)
	if err != nil {
		return err
	}

	adapter := tracker.NewAdapter(backend, a.cfg.TrackerDefaults(), a.log)
	store, err := tracker.NewStore(adapter, a.log)
	if err != nil {
		backend.Close()
		return err
	}

	a.backend = backend
	a.store = store
	return nil
}

func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	a.store = nil
	return err
}

func (a *app) runTUI(demo bool) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	var store *tracker.Store
	if demo {
		s, err := tracker.NewFixturesStore()
		if err != nil {
			return err
		}
		store = s
	} else {
		if err := a.open(); err != nil {
			return err
		}
		store = a.store
	}

	model, err := tui.New(store, a.cfg.SortOrder())
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
