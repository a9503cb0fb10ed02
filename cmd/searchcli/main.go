// Command searchcli is an interactive shell over the search index. It warm
// starts the index from Postgres, then runs a debounced query session: every
// line typed becomes the session query, and results print as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kwhittaker/estatesearch/internal/index"
	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/loader"
	"github.com/kwhittaker/estatesearch/internal/session"
	"github.com/kwhittaker/estatesearch/pkg/config"
	"github.com/kwhittaker/estatesearch/pkg/logger"
	"github.com/kwhittaker/estatesearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	limit := flag.Int("limit", 0, "max results per query (0 uses the configured default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup("warn", cfg.Logging.Format)

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	engine := index.New()
	snapshot, err := loader.New(pg.DB).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot load: %v\n", err)
		os.Exit(1)
	}
	engine.WarmStart(snapshot)
	stats := engine.Stats()
	fmt.Printf("indexed %d documents (%d tokens)\n", stats.Docs, stats.Tokens)
	fmt.Println("type a query and press enter; empty line clears; ctrl-d exits")

	sessionCfg := session.Config{Debounce: cfg.Search.Debounce}
	if *limit > 0 {
		sessionCfg.Limit = *limit
	} else {
		sessionCfg.Limit = cfg.Search.DefaultLimit
	}

	ctrl := session.New(func(ctx context.Context, query string, limit int) []document.Doc {
		return engine.Search(query, limit)
	}, sessionCfg, printState)
	defer ctrl.Close()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		ctrl.SetQuery(scanner.Text())
	}
	fmt.Println()
}

func printState(s session.State) {
	if s.Searching {
		return
	}
	if s.Query == "" {
		fmt.Print("> ")
		return
	}
	if len(s.Results) == 0 {
		fmt.Printf("no results for %q\n> ", s.Query)
		return
	}
	fmt.Printf("%d results for %q:\n", len(s.Results), s.Query)
	for i, doc := range s.Results {
		fmt.Printf("  %2d. [%s] %s", i+1, doc.Type, doc.PrimaryText)
		if doc.SecondaryText != "" {
			fmt.Printf("  (%s)", doc.SecondaryText)
		}
		fmt.Println()
	}
	fmt.Print("> ")
}
