package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/stewardhq/steward/internal/adapter/postgres"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/evaluator"
	"github.com/stewardhq/steward/internal/service"
)

// runOps dispatches operator subcommands. These talk to the storage backend
// directly, so they work while the engine daemon is stopped; they require
// the postgres driver because in-memory state dies with its process.
func runOps(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printOpsHelp()
		return nil
	}

	switch args[0] {
	case "history":
		return runOpsHistory(args[1:])
	case "changes":
		return runOpsChanges(args[1:])
	case "rollback":
		return runOpsRollback(args[1:])
	default:
		printOpsHelp()
		return fmt.Errorf("unknown ops command: %s", args[0])
	}
}

func printOpsHelp() {
	fmt.Fprintf(os.Stderr, `Usage: steward ops <command> [options]

Commands:
  history    Show an asset's snapshot history
  changes    List recent change records
  rollback   Restore the asset touched by a committed change
  help       Show this help message

Examples:
  steward ops history --asset index.html
  steward ops changes --limit 20
  steward ops rollback --change 4f7c... --yes
`)
}

func loadOpsDeps() (*service.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Driver != "postgres" {
		return nil, nil, fmt.Errorf("ops commands need storage.driver=postgres, got %q", cfg.Storage.Driver)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	engine, err := service.NewOrchestrator(service.Options{
		Store:     postgres.NewAssetStore(pool),
		Versions:  postgres.NewVersionLog(pool),
		Changes:   postgres.NewChangeLog(pool),
		Evaluator: evaluator.NewHeuristic(cfg.Engine.AestheticWeight, cfg.Engine.FunctionalWeight),
		Engine:    cfg.Engine,
	})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return engine, pool.Close, nil
}

func runOpsHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	assetKey := fs.String("asset", "", "asset key (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assetKey == "" {
		return fmt.Errorf("--asset is required")
	}

	engine, cleanup, err := loadOpsDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	history, err := engine.History(context.Background(), *assetKey)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tCREATED\tBYTES\tCHECKSUM")
	for _, snap := range history {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.12s\n",
			snap.Seq,
			snap.CreatedAt.Format(time.RFC3339),
			len(snap.Content),
			snap.Checksum)
	}
	return w.Flush()
}

func runOpsChanges(args []string) error {
	fs := flag.NewFlagSet("changes", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "maximum records to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine, cleanup, err := loadOpsDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	recs, err := engine.RecentChanges(context.Background(), *limit)
	if err != nil {
		return fmt.Errorf("recent changes: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tASSET\tCAPABILITY\tSTATUS\tCOMPOSITE\tUPDATED")
	for _, rec := range recs {
		fmt.Fprintf(w, "%.8s\t%s\t%s\t%s\t%.2f\t%s\n",
			rec.ID,
			rec.AssetKey,
			rec.Capability,
			rec.Status,
			rec.Scores.Composite,
			rec.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runOpsRollback(args []string) error {
	fs := flag.NewFlagSet("rollback", flag.ContinueOnError)
	changeID := fs.String("change", "", "change record ID (required)")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *changeID == "" {
		return fmt.Errorf("--change is required")
	}

	if !*yes && !confirm(fmt.Sprintf("Restore the asset touched by change %s?", *changeID)) {
		fmt.Fprintln(os.Stderr, "aborted")
		return nil
	}

	engine, cleanup, err := loadOpsDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Rollback(context.Background(), *changeID); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Change %s rolled back\n", *changeID)
	return nil
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
