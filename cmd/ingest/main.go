// Command ingest is the Scoracle Feeds operator CLI.
//
// Usage:
//
//	scoracle-ingest refresh --datasets f1
//	scoracle-ingest preview --datasets squad,league-table
//	scoracle-ingest current --datasets all --json
//	scoracle-ingest save --file manual.json5
//	scoracle-ingest sources --yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "scoracle-ingest",
		Short:        "Scoracle Feeds dataset CLI",
		SilenceUsage: true,
	}

	root.AddCommand(refreshCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(currentCmd())
	root.AddCommand(saveCmd())
	root.AddCommand(sourcesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// refresh / preview / current
// --------------------------------------------------------------------------

func refreshCmd() *cobra.Command {
	var datasets string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Resolve datasets from live sources and save them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withResolver(func(ctx context.Context, res *resolver.Resolver) error {
				kinds, err := dataset.ParseList(datasets)
				if err != nil {
					return err
				}
				start := time.Now()
				snap, err := res.RefreshAndSave(ctx, kinds)
				if err != nil && !errors.Is(err, resolver.ErrPersist) {
					return err
				}
				logger.Info("Refresh finished", "datasets", len(snap.Datasets), "duration", time.Since(start).Round(time.Millisecond))
				if perr := printSnapshot(snap, asJSON); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&datasets, "datasets", dataset.GroupF1, "Kinds or groups (f1, football, all), comma separated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full snapshot as JSON")
	return cmd
}

func previewCmd() *cobra.Command {
	var datasets string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show manual data if complete, otherwise resolve live data and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withResolver(func(ctx context.Context, res *resolver.Resolver) error {
				kinds, err := dataset.ParseList(datasets)
				if err != nil {
					return err
				}
				snap, err := res.PreviewLiveData(ctx, kinds)
				if err != nil && !errors.Is(err, resolver.ErrPersist) {
					return err
				}
				if perr := printSnapshot(snap, asJSON); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&datasets, "datasets", dataset.GroupF1, "Kinds or groups (f1, football, all), comma separated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full snapshot as JSON")
	return cmd
}

func currentCmd() *cobra.Command {
	var datasets string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show stored datasets without contacting any provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withResolver(func(ctx context.Context, res *resolver.Resolver) error {
				kinds, err := dataset.ParseList(datasets)
				if err != nil {
					return err
				}
				snap, err := res.GetCurrentSnapshot(ctx, kinds)
				if err != nil {
					return err
				}
				return printSnapshot(snap, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&datasets, "datasets", dataset.GroupF1, "Kinds or groups (f1, football, all), comma separated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full snapshot as JSON")
	return cmd
}

// --------------------------------------------------------------------------
// save command
// --------------------------------------------------------------------------

func saveCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a manual snapshot from a JSON or JSON5 file",
		Long: "The file holds one object mapping dataset kinds (or their camelCase form) to\n" +
			"canonical documents. Comments and trailing commas are allowed. Every document\n" +
			"is validated before anything is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			docs, err := readManualFile(file)
			if err != nil {
				return err
			}
			return withResolver(func(ctx context.Context, res *resolver.Resolver) error {
				snap, err := res.SaveManual(ctx, docs)
				if err != nil && !errors.Is(err, resolver.ErrPersist) {
					return err
				}
				if perr := printSnapshot(snap, false); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the manual snapshot file")
	return cmd
}

// readManualFile parses a lenient JSON5 file and re-encodes each document as
// strict JSON.
func readManualFile(path string) (map[dataset.Kind]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var loose map[string]interface{}
	if err := json5.Unmarshal(b, &loose); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	body := make(map[string]json.RawMessage, len(loose))
	for key, v := range loose {
		doc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		body[key] = doc
	}
	return dataset.ParseDocuments(body)
}

// --------------------------------------------------------------------------
// sources command
// --------------------------------------------------------------------------

func sourcesCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Print every dataset's fallback chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sources, err := dataset.LoadSources(cfg.SourcesFile, cfg.F1Season)
			if err != nil {
				return err
			}
			if asYAML {
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(sources)
			}

			registry, err := buildRegistry(cfg, sources)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Dataset", "#", "Source"})
			for _, k := range registry.Kinds() {
				res, _ := registry.Get(k)
				for i, src := range res.Sources() {
					t.AppendRow(table.Row{k, i + 1, src})
				}
				t.AppendSeparator()
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the resolved sources configuration as YAML")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func buildRegistry(cfg *config.Config, sources dataset.Sources) (*dataset.Registry, error) {
	client := fetch.NewClient(fetch.Options{
		Timeout:           cfg.FetchTimeout,
		RequestsPerMinute: cfg.FetchRequestsPerMinute,
		UserAgent:         cfg.FetchUserAgent,
	}, logger)
	return dataset.NewRegistry(dataset.Deps{Client: client, Sources: sources, Now: time.Now, Logger: logger})
}

// withResolver handles config loading, store setup, and context cancellation.
func withResolver(fn func(ctx context.Context, res *resolver.Resolver) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	sources, err := dataset.LoadSources(cfg.SourcesFile, cfg.F1Season)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg, sources)
	if err != nil {
		return fmt.Errorf("build chains: %w", err)
	}

	store, err := snapshot.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	return fn(ctx, resolver.New(registry, store, logger))
}

func printSnapshot(snap resolver.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Dataset", "Origin", "Source", "Attempts", "Bytes"})
	for _, k := range snap.Kinds() {
		m := snap.Meta[k]
		t.AppendRow(table.Row{k, m.Origin, m.Source, m.Attempts, len(snap.Datasets[k])})
	}
	t.AppendFooter(table.Row{"", "", "override", snap.Override, ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
