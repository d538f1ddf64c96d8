package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jask/sangam/internal/config"
	"github.com/jask/sangam/internal/ledger"
	"github.com/jask/sangam/internal/narrate"
	"github.com/jask/sangam/internal/storage"
	"github.com/jask/sangam/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("log: %v", err)
	}

	def := storage.DefaultDocument(ledger.Group{
		ID:            uuid.NewString(),
		Name:          cfg.Group.Name,
		MonthlySaving: cfg.Group.MonthlySaving,
		InterestRate:  cfg.Group.InterestRate,
	}, cfg.Group.SeedDemo)

	provider, closeFn, err := openProvider(cfg.Storage, def)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeFn()

	store := &ledger.Store{Provider: provider, Log: logger}
	announcer := narrate.Log{Logger: logger}

	p := tea.NewProgram(tui.New(cfg, store, announcer), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// newLogger writes JSON lines to the configured file. The TUI owns the
// terminal, so nothing logs to stdout.
func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, nil
}

func openProvider(cfg config.StorageConfig, def ledger.Document) (ledger.Provider, func() error, error) {
	switch cfg.Driver {
	case "bolt":
		b, err := storage.OpenBolt(cfg.Path, def)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt: %w", err)
		}
		return b, b.Close, nil
	case "sqlite", "":
		if err := storage.RunMigrations(cfg.Path); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		s, err := storage.OpenSQLite(cfg.Path, def)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
