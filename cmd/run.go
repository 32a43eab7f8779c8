package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/crispterm/internal/ai"
	"github.com/abhisek/crispterm/internal/app"
	"github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/llm"
	"github.com/abhisek/crispterm/internal/remote"
	"github.com/abhisek/crispterm/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	schedule, err := cfg.Schedule()
	if err != nil {
		return fmt.Errorf("interview schedule: %w", err)
	}

	// LLM credentials are optional — without them the question bank
	// and heuristic scoring take over.
	var provider llm.Provider
	aiReady := false
	if llmCfg, ok := llm.DiscoverConfig(); ok {
		p, perr := llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if perr != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", perr)
			fmt.Fprintln(os.Stderr, "Falling back to the built-in question bank.")
		} else {
			provider = p
			aiReady = true
		}
	}
	svc := ai.New(provider, ai.DefaultConfig())

	var remoteStore remote.Store
	engineCfg := interview.Config{
		Role:     cfg.Interview.Role,
		Topic:    cfg.Interview.Topic,
		Schedule: schedule,
		AI:       svc,
		Cache:    st.SessionCache(),
	}
	if cfg.Remote.BaseURL != "" {
		h := remote.NewHTTPStore(cfg.Remote.BaseURL)
		remoteStore = h
		engineCfg.Publisher = h
	}

	engine, err := interview.NewEngine(engineCfg)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	return app.Run(app.Options{
		Engine:  engine,
		Cache:   st.SessionCache(),
		Remote:  remoteStore,
		Role:    cfg.Interview.Role,
		Topic:   cfg.Interview.Topic,
		AIReady: aiReady,
	})
}
