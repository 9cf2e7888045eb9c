package model

import (
	"path/filepath"
	"time"
)

// Config defines a single pipeline run: the two source URLs, the local data
// directory layout and the fetch timeout. The pipeline takes no flags and
// reads no environment variables, so DefaultConfig is the entire
// configuration surface.
type Config struct {
	IndicatorURL   string        `json:"indicatorUrl"`
	DictionaryURL  string        `json:"dictionaryUrl"`
	DataDir        string        `json:"dataDir"`
	IndicatorFile  string        `json:"indicatorFile"`
	DictionaryFile string        `json:"dictionaryFile"`
	DatabaseFile   string        `json:"databaseFile"`
	ChartFile      string        `json:"chartFile"`
	TrackingFile   string        `json:"trackingFile"`
	FetchTimeout   time.Duration `json:"fetchTimeout"`
}

// DefaultConfig returns the World Bank labor force pipeline configuration.
func DefaultConfig() Config {
	return Config{
		IndicatorURL:   "https://data360files.worldbank.org/data360-data/data/WB_WDI/WB_WDI_SL_TLF_CACT_ZS.csv",
		DictionaryURL:  "https://data360files.worldbank.org/data360-data/data/WB_WDI/WB_WDI_SL_TLF_CACT_ZS_DATADICT.csv",
		DataDir:        "data",
		IndicatorFile:  "labor_force_data.csv",
		DictionaryFile: "data_dictionary.csv",
		DatabaseFile:   "worldbank.duckdb",
		ChartFile:      "regional_labor_force_chart.html",
		TrackingFile:   "pipeline.db",
		FetchTimeout:   60 * time.Second,
	}
}

// IndicatorPath is the cached raw indicator download.
func (c Config) IndicatorPath() string { return filepath.Join(c.DataDir, c.IndicatorFile) }

// DictionaryPath is the cached raw dictionary download.
func (c Config) DictionaryPath() string { return filepath.Join(c.DataDir, c.DictionaryFile) }

// DatabasePath is the persistent analytical database file.
func (c Config) DatabasePath() string { return filepath.Join(c.DataDir, c.DatabaseFile) }

// ChartPath is the rendered chart output.
func (c Config) ChartPath() string { return filepath.Join(c.DataDir, c.ChartFile) }

// TrackingPath is the sqlite run-tracking database. It lives next to the
// binary, not under the data directory, so wiping data/ keeps run history.
func (c Config) TrackingPath() string { return c.TrackingFile }
