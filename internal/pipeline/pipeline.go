package pipeline

import (
	"context"
	"fmt"
	"time"

	"worldbank-pipeline/internal/model"
	"worldbank-pipeline/internal/store"
	"worldbank-pipeline/pkg/utils"
)

// ------------------- Pipeline Runner -------------------

// Run executes the whole pipeline once: fetch → load → transform →
// aggregate → render. Stages run strictly in order; only the two downloads
// inside the fetch stage overlap. The analytical store is opened after both
// files are cached and released on every exit path, so a failure partway
// through transformation still closes the handle. The first fatal error
// aborts the run; there is no partial-success mode and no checkpoint.
func Run(ctx context.Context, runID string, cfg model.Config) (report model.RunReport, err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting pipeline run: %s\n", runID)

	report.RunID = runID

	store.UpdateRunStatus(runID, "running")
	defer func() {
		report.Duration = time.Since(start)
		if err != nil {
			store.UpdateRunStatus(runID, "failed")
			store.SaveRunError(runID, err)
		}
	}()

	// --- FETCH STAGE ---
	err = runStage(runID, "fetch", func() (int64, error) {
		return 2, FetchSources(ctx, cfg)
	})
	if err != nil {
		return report, err
	}

	// The analytical store opens only after both files are cached and stays
	// open until the chart is rendered.
	db, err := store.OpenDuck(cfg.DatabasePath())
	if err != nil {
		return report, err
	}
	defer db.Close()

	// --- LOAD STAGE ---
	err = runStage(runID, "load", func() (int64, error) {
		var loadErr error
		report.RawRows, report.DictionaryRows, loadErr = LoadRawTables(ctx, db, cfg)
		return report.RawRows + report.DictionaryRows, loadErr
	})
	if err != nil {
		return report, err
	}

	// --- TRANSFORM STAGE ---
	err = runStage(runID, "transform", func() (int64, error) {
		var tErr error
		if report.CleanRows, report.ExcludedRows, tErr = BuildCleanTable(ctx, db); tErr != nil {
			return 0, tErr
		}
		store.SavePipelineLog(runID, "transform", "info", "rows excluded by null or cast failure", map[string]interface{}{
			"excluded_rows": report.ExcludedRows,
		})
		if report.MappingRows, tErr = BuildRegionMapping(ctx, db); tErr != nil {
			return report.CleanRows, tErr
		}
		report.EnrichedRows, tErr = BuildEnrichedTable(ctx, db)
		return report.EnrichedRows, tErr
	})
	if err != nil {
		return report, err
	}

	// --- AGGREGATE STAGE ---
	var aggs []model.RegionYearAggregate
	var summaries []model.RegionSummary
	err = runStage(runID, "aggregate", func() (int64, error) {
		var aErr error
		if aggs, aErr = RegionYearAggregates(ctx, db); aErr != nil {
			return 0, aErr
		}
		if summaries, aErr = RegionSummaries(ctx, db); aErr != nil {
			return int64(len(aggs)), aErr
		}
		report.AggregateRows = len(aggs)
		report.SummaryRows = len(summaries)
		return int64(len(aggs)), nil
	})
	if err != nil {
		return report, err
	}

	// An empty aggregate is a filtering outcome, not an error, but the two
	// causes must stay distinguishable in diagnostics.
	if len(aggs) == 0 {
		if report.EnrichedRows == 0 {
			store.SavePipelineLog(runID, "aggregate", "warning", "no data: enriched table is empty", nil)
			fmt.Println("⚠️ No data: indicator_with_region is empty")
		} else {
			store.SavePipelineLog(runID, "aggregate", "warning", "every (region, year) group fell below the 3-country threshold", map[string]interface{}{
				"enriched_rows": report.EnrichedRows,
			})
			fmt.Println("⚠️ All groups filtered: no (region, year) reached 3 distinct countries")
		}
	}

	printSummaries(summaries)

	// --- RENDER STAGE ---
	report.ChartPath = cfg.ChartPath()
	err = runStage(runID, "render", func() (int64, error) {
		return int64(len(aggs)), RenderRegionalChart(aggs, report.ChartPath)
	})
	if err != nil {
		return report, err
	}

	if size, sizeErr := utils.NewDataDirManager(cfg.DataDir).FileSize(cfg.ChartFile); sizeErr == nil {
		store.SavePipelineLog(runID, "render", "info", "chart written", map[string]interface{}{
			"path":  report.ChartPath,
			"bytes": size,
		})
	}

	store.UpdateRunStatus(runID, "completed")
	fmt.Printf("🏁 Pipeline run %s completed in %v\n", runID, time.Since(start))
	return report, nil
}

// runStage wraps one stage with status updates, progress rows and timing.
func runStage(runID, stage string, fn func() (int64, error)) error {
	startTime := time.Now()
	store.UpdateRunStatus(runID, stage)
	store.SaveStageProgress(runID, stage, "started", &startTime, nil, 0)

	records, err := fn()
	endTime := time.Now()

	if err != nil {
		store.SaveStageProgress(runID, stage, "failed", &startTime, &endTime, records)
		store.SavePipelineLog(runID, stage, "error", err.Error(), nil)
		return err
	}

	store.SaveStageProgress(runID, stage, "completed", &startTime, &endTime, records)
	store.SavePipelineLog(runID, stage, "info", "stage completed", map[string]interface{}{
		"records":     records,
		"duration_ms": endTime.Sub(startTime).Milliseconds(),
	})
	return nil
}

func printSummaries(summaries []model.RegionSummary) {
	if len(summaries) == 0 {
		return
	}
	fmt.Println("📊 Summary by Region:")
	for _, s := range summaries {
		fmt.Printf("   %-28s %d-%d  avg %.1f%%  (%d data points)\n",
			s.Region, s.FirstYear, s.LastYear, s.AvgRate, s.DataPoints)
	}
}
