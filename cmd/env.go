package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/config"
	"github.com/abhisek/cybersage/internal/learner"
	"github.com/abhisek/cybersage/internal/logger"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/spf13/cobra"
)

// environment is the state shared by every command that touches the
// learner's data.
type environment struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.Store
	catalog *catalog.Catalog
	profile *learner.Profile
}

type envOptions struct {
	// logToFile sends logs beside the database so the TUI owns the terminal.
	logToFile bool
}

// openEnv loads configuration, opens the store and restores the learner.
func openEnv(ctx context.Context, cmd *cobra.Command, opts envOptions) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	logPath := cfg.LogFile
	if logPath == "" && opts.logToFile {
		logPath = store.LogPathFor(dbPath)
	}
	log, err := logger.New(cfg.LogMode, logPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", dbPath)

	cat := catalog.Default()
	profile, err := learner.Load(ctx, st.SnapshotRepo(), cat, learner.Options{
		AppVersion:     version,
		StartingPoints: cfg.StartingPoints,
		Logger:         log,
	})
	if err != nil {
		st.Close()
		log.Sync()
		return nil, fmt.Errorf("load learner: %w", err)
	}

	if cfg.LearnerName != "" && profile.Name() == "" {
		if err := profile.SetName(ctx, cfg.LearnerName); err != nil {
			log.Warn("could not store learner name", "error", err)
		}
	}

	return &environment{cfg: cfg, log: log, store: st, catalog: cat, profile: profile}, nil
}

func (e *environment) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}
