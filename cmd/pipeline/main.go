package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"worldbank-pipeline/internal/model"
	"worldbank-pipeline/internal/pipeline"
	"worldbank-pipeline/internal/store"
	"worldbank-pipeline/pkg/utils"
)

// The pipeline runs top to bottom exactly once: no flags, no arguments, no
// environment variables. The exit code propagates the first unhandled
// failure.
func main() {
	cfg := model.DefaultConfig()

	if err := utils.NewDataDirManager(cfg.DataDir).Ensure(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	if err := store.InitDB(cfg.TrackingPath()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to init tracking store: %v\n", err)
		os.Exit(1)
	}
	defer store.CloseDB()

	runID := uuid.New().String()
	if err := store.SaveRun(runID, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to record run: %v\n", err)
		os.Exit(1)
	}

	report, err := pipeline.Run(context.Background(), runID, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ pipeline failed: %v\n", err)
		store.CloseDB()
		os.Exit(1)
	}

	fmt.Printf("✅ Done: %d raw rows → %d clean rows → %d aggregate rows, chart at %s\n",
		report.RawRows, report.CleanRows, report.AggregateRows, report.ChartPath)
}
