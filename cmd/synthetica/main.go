package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"synthetica/internal/config"
	"synthetica/internal/core"
	"synthetica/internal/engine"
	"synthetica/internal/export"
	"synthetica/internal/keypool"
	"synthetica/internal/openrouter"
	"synthetica/internal/preset"
	"synthetica/internal/storage"
	"synthetica/internal/usage"
	"synthetica/web/handlers"
)

var (
	dbPath  string
	cfgPath string
	debug   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "synthetica",
	Short: "AI debate arena",
	Long: `synthetica orchestrates automated debates between two AI personas,
streaming their exchange turn by turn from the OpenRouter API.

Configure two personas (or pick a preset), choose models, and watch
them argue for a bounded number of turns while token usage and cost
are tracked.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.synthetica/synthetica.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config path (default: ~/.synthetica/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFrom(cfgPath)
	}
	return config.Load()
}

func getStorage() (storage.Store, error) {
	path := dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}
	return storage.NewSQLiteStore(path)
}

// buildPool seeds the credential pool from config (yaml + environment) and
// the persisted key list.
func buildPool(cfg *config.Config, store storage.Store) *keypool.Pool {
	pool := keypool.New(cfg.API.Keys...)
	var saved []string
	store.Get(storage.KeyAPIKeys, &saved)
	for _, key := range saved {
		pool.Add(key)
	}
	return pool
}

// fetchModels serves the catalog from the store cache while fresh.
func fetchModels(cmd *cobra.Command, client *openrouter.Client, pool *keypool.Pool, store storage.Store) ([]openrouter.Model, error) {
	if cache := storage.LoadModelCache(store); cache != nil && cache.Fresh(time.Now()) {
		return cache.Models, nil
	}
	key, err := pool.Current()
	if err != nil {
		return nil, fmt.Errorf("no API key configured: %w", err)
	}
	models, err := client.ListModels(cmd.Context(), key)
	if err != nil {
		return nil, err
	}
	if err := storage.SaveModelCache(store, models, time.Now()); err != nil {
		slog.Warn("Failed to cache model catalog", "error", err)
	}
	return models, nil
}

func priceLookup(models []openrouter.Model) usage.PriceLookup {
	pricing := make(map[string]openrouter.Pricing, len(models))
	for _, m := range models {
		pricing[m.ID] = m.Pricing
	}
	return func(model string) (float64, float64, bool) {
		p, ok := pricing[model]
		return p.Prompt, p.Completion, ok
	}
}

// run command - run a debate in the terminal
var runCmd = &cobra.Command{
	Use:   "run [preset]",
	Short: "Run a debate",
	Long: `Run a debate between two AI personas, streaming the exchange to the
terminal. With a preset argument the built-in persona pair is used;
otherwise the persisted persona prompts apply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		ai1 := cfg.ParticipantDefaults()
		ai2 := cfg.ParticipantDefaults()
		store.Get(storage.KeyAI1Config, &ai1)
		store.Get(storage.KeyAI2Config, &ai2)

		presetID := cfg.Defaults.Preset
		if len(args) == 1 {
			presetID = args[0]
		}
		if p := preset.Get(presetID); p != nil && presetID != preset.CustomID {
			ai1.SystemPrompt = p.AI1
			ai2.SystemPrompt = p.AI2
		} else if presetID != "" && presetID != preset.CustomID {
			return fmt.Errorf("unknown preset: %s (see 'synthetica presets')", presetID)
		}

		if model1, _ := cmd.Flags().GetString("model1"); model1 != "" {
			ai1.Model = model1
		}
		if model2, _ := cmd.Flags().GetString("model2"); model2 != "" {
			ai2.Model = model2
		}
		turns, _ := cmd.Flags().GetInt("turns")
		if turns <= 0 {
			turns = cfg.Defaults.MaxTurns
		}

		pool := buildPool(cfg, store)
		client := openrouter.NewClient(cfg.API.BaseURL)

		var lookup usage.PriceLookup
		if models, err := fetchModels(cmd, client, pool, store); err == nil {
			lookup = priceLookup(models)
		} else {
			slog.Warn("Pricing unavailable, costs will read zero", "error", err)
		}
		tracker := usage.NewTracker(lookup)

		eng := engine.New(client, pool, tracker)
		var lastSpeaker core.Speaker
		eng.OnDelta(func(speaker core.Speaker, delta string) {
			if speaker != lastSpeaker {
				fmt.Printf("\n\n=== %s ===\n\n", speaker.Label())
				lastSpeaker = speaker
			}
			fmt.Print(delta)
		})

		// Ctrl+C stops the debate cleanly, retaining streamed output.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Fprintln(os.Stderr, "\nStopping debate...")
			eng.Stop()
		}()

		if err := eng.Start(ai1, ai2, turns); err != nil {
			return err
		}
		eng.Wait()

		snapshot := eng.Snapshot()
		if err := store.Put(storage.KeyTranscript, snapshot.Messages); err != nil {
			slog.Warn("Failed to persist transcript", "error", err)
		}

		totals := snapshot.Usage
		fmt.Printf("\n\nDebate %s. Tokens: AI1 %d / AI2 %d. Cost: $%.6f.\n",
			snapshot.Status, totals.Tokens.P1, totals.Tokens.P2, totals.Cost.Total)
		if snapshot.Status == engine.StatusFailed {
			return fmt.Errorf("debate failed; see transcript for details")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("model1", "", "Model id for participant 1")
	runCmd.Flags().String("model2", "", "Model id for participant 2")
	runCmd.Flags().Int("turns", 0, "Number of turns (default from config)")
}

// models command - list the model catalog
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		pool := buildPool(cfg, store)
		client := openrouter.NewClient(cfg.API.BaseURL)
		models, err := fetchModels(cmd, client, pool, store)
		if err != nil {
			return err
		}

		freeOnly, _ := cmd.Flags().GetBool("free")

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPROMPT $/1K\tCOMPLETION $/1K")
		for _, m := range models {
			if freeOnly && !m.Free() {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\n", m.ID, m.Name, m.Pricing.Prompt, m.Pricing.Completion)
		}
		return w.Flush()
	},
}

func init() {
	modelsCmd.Flags().Bool("free", false, "Only show free models")
}

// presets command - list built-in persona pairs
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in debate presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, p := range preset.All() {
			fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
		}
		return w.Flush()
	},
}

// export command - write the saved transcript to a file
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the saved transcript",
	Long: `Export the most recent transcript to a file. The format is inferred
from --format (markdown, json, html, pdf); the default filename is
dated, e.g. debate-2026-08-28.md.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		var messages []core.Message
		ok, err := store.Get(storage.KeyTranscript, &messages)
		if err != nil {
			return err
		}
		if !ok || len(messages) == 0 {
			return fmt.Errorf("no saved transcript to export")
		}

		formatName, _ := cmd.Flags().GetString("format")
		format := export.Format(formatName)
		switch formatName {
		case "md", "markdown":
			format = export.FormatMarkdown
		}
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			path = export.GenerateFilename(time.Now(), exporter.FileExtension())
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := exporter.Export(messages, f); err != nil {
			return err
		}
		fmt.Printf("Exported %d messages to %s\n", len(messages), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Export format: markdown, json, html, pdf")
}

// keys command - manage the credential pool
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

func init() {
	keysCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := getStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			var keys []string
			store.Get(storage.KeyAPIKeys, &keys)
			if len(keys) == 0 {
				fmt.Println("No API keys stored.")
				return nil
			}
			for i, key := range keys {
				fmt.Printf("%d. %s\n", i+1, maskKey(key))
			}
			return nil
		},
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "add <key>",
		Short: "Add an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateKeys(func(pool *keypool.Pool) { pool.Add(args[0]) })
		},
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "remove <key>",
		Short: "Remove an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateKeys(func(pool *keypool.Pool) { pool.Remove(args[0]) })
		},
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateKeys(func(pool *keypool.Pool) { pool.Clear() })
		},
	})
}

func updateKeys(mutate func(*keypool.Pool)) error {
	store, err := getStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	var keys []string
	store.Get(storage.KeyAPIKeys, &keys)
	pool := keypool.New(keys...)
	mutate(pool)
	if err := store.Put(storage.KeyAPIKeys, pool.Keys()); err != nil {
		return err
	}
	fmt.Printf("%d key(s) stored.\n", pool.Len())
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// serve command - start the web API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		// The server logs JSON for machine consumption.
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

		pool := buildPool(cfg, store)
		client := openrouter.NewClient(cfg.API.BaseURL)

		var lookup usage.PriceLookup
		if models, err := fetchModels(cmd, client, pool, store); err == nil {
			lookup = priceLookup(models)
		} else {
			slog.Warn("Pricing unavailable at startup", "error", err)
		}
		tracker := usage.NewTracker(lookup)
		eng := engine.New(client, pool, tracker)

		h := handlers.New(eng, pool, tracker, client, store)
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: h.Routes(),
		}

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			slog.Info("Shutting down...")
			eng.Stop()
			server.Close()
		}()

		slog.Info("Starting synthetica server", "url", fmt.Sprintf("http://localhost:%d", port))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Server port (default from config)")
}
