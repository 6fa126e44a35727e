package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/cybersage/internal/app"
	"github.com/abhisek/cybersage/internal/llm"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/questions"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI. start,
// when set, picks the first screen.
func runApp(cmd *cobra.Command, start func(*training.Orchestrator) screen.Screen) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := openEnv(ctx, cmd, envOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer env.Close()

	eventRepo := env.store.EventRepo()
	srcOpts := questions.Options{
		Mode:    env.cfg.SourceMode(),
		Catalog: env.catalog,
		HTTP: questions.HTTPConfig{
			BaseURL: env.cfg.APIBaseURL,
			Token:   env.cfg.APIToken,
			Timeout: env.cfg.HTTPTimeout,
		},
		CacheTTL: env.cfg.CacheTTL,
	}

	if llmCfg, ok := env.cfg.LLM.Discover(); ok {
		provider, err := llm.NewProvider(ctx, llmCfg, eventRepo, env.log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Questions will come from the built-in bank.")
		} else {
			srcOpts.Provider = provider
		}
	}

	if env.cfg.RedisURL != "" {
		cache, err := questions.NewRedisCache(ctx, env.cfg.RedisURL)
		if err != nil {
			env.log.Warn("question cache unavailable", "error", err)
		} else {
			defer cache.Close()
			srcOpts.Cache = cache
		}
	}

	source, hinter, err := questions.NewSource(srcOpts, env.log)
	if err != nil {
		return fmt.Errorf("question source: %w", err)
	}
	env.log.Info("question source ready", "source", source.Name())

	feed := app.NewFeed(app.DefaultFeedSize)
	orch := training.New(training.Deps{
		Tracker: env.profile.Tracker(),
		Ledger:  env.profile.Ledger(),
		Source:  source,
		Hinter:  hinter,
		Bus:     notify.NewBus(feed, env.log),
		Events:  eventRepo,
		Logger:  env.log,
	},
		training.WithQuestionCount(env.cfg.QuestionCount),
		training.WithHintCost(env.cfg.HintCost),
	)

	opts := app.Options{
		Orchestrator: orch,
		Profile:      env.profile,
		EventRepo:    eventRepo,
		Feed:         feed,
		Logger:       env.log,
	}
	if start != nil {
		opts.Start = func() screen.Screen { return start(orch) }
	}
	return app.Run(opts)
}
