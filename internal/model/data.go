package model

import "time"

// RegionYearAggregate is one (region, year) group: the mean participation
// rate and the number of distinct contributing countries. Groups with fewer
// than three distinct countries never materialize.
type RegionYearAggregate struct {
	Region       string  `json:"region"`
	Year         int     `json:"year"`
	AvgRate      float64 `json:"avg_participation_rate"`
	NumCountries int     `json:"num_countries"`
}

// RegionSummary is the per-region rollup across all years.
type RegionSummary struct {
	Region     string  `json:"region"`
	FirstYear  int     `json:"first_year"`
	LastYear   int     `json:"last_year"`
	AvgRate    float64 `json:"avg_rate"` // rounded to one decimal place
	DataPoints int     `json:"data_points"`
}

// RunReport collects the row counts and outputs of a completed run.
type RunReport struct {
	RunID          string        `json:"run_id"`
	RawRows        int64         `json:"raw_rows"`
	DictionaryRows int64         `json:"dictionary_rows"`
	CleanRows      int64         `json:"clean_rows"`
	ExcludedRows   int64         `json:"excluded_rows"` // rows dropped by null or cast failure
	MappingRows    int64         `json:"mapping_rows"`
	EnrichedRows   int64         `json:"enriched_rows"`
	AggregateRows  int           `json:"aggregate_rows"`
	SummaryRows    int           `json:"summary_rows"`
	ChartPath      string        `json:"chart_path"`
	Duration       time.Duration `json:"duration"`
}
