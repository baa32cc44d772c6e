// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/resolvit"
	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/ingestion"
	"github.com/poiesic/resolvit/resolve"
	"github.com/poiesic/resolvit/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "resolvit",
		Usage: "Clinical terminology store and placeholder resolution engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "load",
				Usage:     "Load NDJSON terminology bundles into the store",
				ArgsUsage: "BUNDLE [BUNDLE...]",
				Action:    loadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Path to the terminology data directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of concepts to write in each batch",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 1000,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search loaded concepts by display text",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Path to the terminology data directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "system",
						Aliases: []string{"s"},
						Usage:   "Restrict hits to a code system (repeatable, aliases accepted)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "search-config",
						Usage: "Path to a YAML search tuning file",
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "Look up a single code in a code system",
				ArgsUsage: "CODE",
				Action:    lookupCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Path to the terminology data directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "system",
						Aliases:  []string{"s"},
						Usage:    "Code system URI or alias",
						Required: true,
					},
				},
			},
			{
				Name:   "systems",
				Usage:  "List loaded code systems",
				Action: systemsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Path to the terminology data directory",
						Required: true,
					},
				},
			},
			{
				Name:      "resolve",
				Usage:     "Resolve placeholder codings in a JSON document",
				ArgsUsage: "DOCUMENT",
				Action:    resolveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Path to the terminology data directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the resolved document to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "oracle-host",
						Usage: "Decision oracle host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "oracle-model",
						Usage:    "Decision oracle model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "oracle-token",
						Usage: "Decision oracle API token",
						Value: "none",
					},
					&cli.DurationFlag{
						Name:  "request-timeout",
						Usage: "Timeout for a single oracle call",
						Value: 60 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum transport attempts per oracle call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Oracle turns allowed per placeholder",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "resource-concurrency",
						Usage: "Number of resources resolved in parallel",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "placeholder-concurrency",
						Usage: "Number of placeholders resolved in parallel per resource",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "search-config",
						Usage: "Path to a YAML search tuning file",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.NArg() == 0 {
		return fmt.Errorf("at least one bundle file is required")
	}

	// Open terminology store
	engine, err := resolvit.New(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open terminology store: %w", err)
	}
	defer engine.Close()

	loader, err := engine.NewLoader(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithProgress(os.Stderr, c.Int("report-interval")),
	)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", dataDir)
	fmt.Fprintln(os.Stderr)

	for _, path := range c.Args().Slice() {
		summary, err := loader.LoadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "%s: %d systems, %d concepts, %d designations, %d skipped\n",
			path, summary.Systems, summary.Concepts, summary.Designations, summary.Skipped)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" && len(c.StringSlice("system")) == 0 {
		return fmt.Errorf("a query or a --system scope is required")
	}

	// Open terminology store
	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	engine, err := resolvit.New(dataDir, opts...)
	if err != nil {
		return fmt.Errorf("failed to open terminology store: %w", err)
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	result := searcher.SearchWithGuidance(ctx, query, search.SearchOptions{
		Systems: c.StringSlice("system"),
		Limit:   c.Int("limit"),
	})

	fmt.Printf("Found %d hits\n", result.Count)
	for i, hit := range result.Hits {
		fmt.Printf("%d: '%s' (%s|%s)[%0.3f]\n", i, hit.Display, hit.System, hit.Code, hit.Score)
	}
	if result.Guidance != "" {
		fmt.Fprintln(os.Stderr, result.Guidance)
	}

	return nil
}

func lookupCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("a code argument is required")
	}

	// Open terminology store
	engine, err := resolvit.New(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open terminology store: %w", err)
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	canonical, ok := searcher.Resolver().Normalize(ctx, c.String("system"))
	if !ok {
		return fmt.Errorf("unknown code system %q", c.String("system"))
	}

	concept, err := engine.Concepts().LookupCode(ctx, canonical, code)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if concept == nil {
		return fmt.Errorf("code %s|%s is not loaded", canonical, code)
	}

	fmt.Printf("%s|%s: %s\n", concept.System, concept.Code, concept.Display)
	return nil
}

func systemsCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	// Open terminology store
	engine, err := resolvit.New(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open terminology store: %w", err)
	}
	defer engine.Close()

	metas, err := engine.Concepts().SystemMetas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list code systems: %w", err)
	}

	fmt.Printf("Found %d code systems\n", len(metas))
	for _, meta := range metas {
		version := meta.Version
		if version == "" {
			version = "unversioned"
		}
		fmt.Printf("%s: %d concepts (%s)\n", meta.System, meta.ConceptCount, version)
	}
	return nil
}

func resolveCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	inputPath := c.Args().First()
	if inputPath == "" {
		return fmt.Errorf("an input document is required")
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}
	resources, err := collectResources(document)
	if err != nil {
		return err
	}

	// Create oracle config
	oracleConfig := ai.NewConfig(
		ai.WithHost(c.String("oracle-host")),
		ai.WithModel(c.String("oracle-model")),
		ai.WithToken(c.String("oracle-token")),
		ai.WithRequestTimeout(c.Duration("request-timeout")),
		ai.WithMaxRetries(c.Int("max-retries")),
		ai.WithRetryBaseDelay(c.Duration("retry-delay")),
	)
	if err := oracleConfig.Validate(); err != nil {
		return fmt.Errorf("invalid oracle configuration: %w", err)
	}

	// Open terminology store
	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	opts = append(opts, resolvit.WithOracleConfig(oracleConfig))
	engine, err := resolvit.New(dataDir, opts...)
	if err != nil {
		return fmt.Errorf("failed to open terminology store: %w", err)
	}
	defer engine.Close()

	resolver, err := engine.NewResolver(
		resolve.WithMaxIterations(c.Int("max-iterations")),
		resolve.WithResourceConcurrency(c.Int("resource-concurrency")),
		resolve.WithPlaceholderConcurrency(c.Int("placeholder-concurrency")),
	)
	if err != nil {
		return fmt.Errorf("failed to create resolver: %w", err)
	}
	defer resolver.Release()

	// Run resolution
	fmt.Fprintf(os.Stderr, "Data directory: %s\n", dataDir)
	fmt.Fprintf(os.Stderr, "Oracle host: %s\n", oracleConfig.Host)
	fmt.Fprintf(os.Stderr, "Oracle model: %s\n", oracleConfig.Model)
	fmt.Fprintf(os.Stderr, "Resources: %d\n", len(resources))
	fmt.Fprintln(os.Stderr)

	report, err := resolver.Resolve(ctx, resources)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	out, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	out = append(out, '\n')
	if outputPath := c.String("out"); outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
	} else {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Resolved %d placeholders, %d failures\n", report.Resolved, len(report.Failures))
	keys := make([]string, 0, len(report.Failures))
	for key := range report.Failures {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		failure := report.Failures[key]
		fmt.Fprintf(os.Stderr, "  %s: %s after %d attempts\n", key, failure.FailureReason, len(failure.Attempts))
	}

	return nil
}

// collectResources flattens a parsed document into the resource list the
// resolver walks. A JSON array is a list of resources, an object with an
// "entry" array contributes each entry's resource, and any other object is
// a single resource. Maps are shared with the original document, so edits
// made during resolution land in it.
func collectResources(document any) ([]any, error) {
	switch doc := document.(type) {
	case []any:
		return doc, nil
	case map[string]any:
		entries, ok := doc["entry"].([]any)
		if !ok {
			return []any{doc}, nil
		}
		var resources []any
		for _, entry := range entries {
			wrapper, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if resource, ok := wrapper["resource"]; ok {
				resources = append(resources, resource)
			}
		}
		return resources, nil
	default:
		return nil, fmt.Errorf("input document must be a JSON object or array")
	}
}

func engineOptions(c *cli.Context) ([]resolvit.EngineOption, error) {
	var opts []resolvit.EngineOption
	if path := c.String("search-config"); path != "" {
		config, err := search.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load search config: %w", err)
		}
		opts = append(opts, resolvit.WithSearchConfig(config))
	}
	return opts, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
