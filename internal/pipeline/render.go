package pipeline

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"worldbank-pipeline/internal/model"
)

// ------------------- Render Stage -------------------

// Each point carries [year, rate, countries]; the first two dimensions place
// the point, the third feeds the tooltip.
const tooltipFormatter = `function (params) {
	var lines = [params[0].value[0]];
	for (var i = 0; i < params.length; i++) {
		var p = params[i];
		lines.push(p.marker + ' ' + p.seriesName + ': ' + p.value[1].toFixed(1) + '% (' + p.value[2] + ' countries)');
	}
	return lines.join('<br/>');
}`

// RenderRegionalChart serializes the regional aggregates as an interactive
// line chart, one series per region, and writes it to chartPath as a single
// HTML file viewable in any browser. go-echarts applies no row-count limit,
// so nothing is truncated regardless of input size. The chart ID is pinned so
// re-running the pipeline on unchanged data produces a byte-identical file.
func RenderRegionalChart(aggs []model.RegionYearAggregate, chartPath string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   "regional_labor_force",
			PageTitle: "Labor Force Participation Rate by Region",
			Width:     "700px",
			Height:    "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Labor Force Participation Rate by Region Over Time",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "axis",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Bottom: "0",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Year",
			Type: "value",
			Min:  "dataMin",
			Max:  "dataMax",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Average Participation Rate (%)",
		}),
	)

	for _, region := range regionOrder(aggs) {
		var points []opts.LineData
		for _, a := range aggs {
			if a.Region != region {
				continue
			}
			points = append(points, opts.LineData{
				Value: []interface{}{a.Year, a.AvgRate, a.NumCountries},
			})
		}
		line.AddSeries(region, points, charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}))
	}

	f, err := os.Create(chartPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	fmt.Printf("📈 Chart saved to: %s\n", chartPath)
	return nil
}

// regionOrder returns the distinct regions in first-appearance order. The
// aggregates arrive sorted by (region, year), so this is alphabetical.
func regionOrder(aggs []model.RegionYearAggregate) []string {
	seen := make(map[string]bool)
	var order []string
	for _, a := range aggs {
		if !seen[a.Region] {
			seen[a.Region] = true
			order = append(order, a.Region)
		}
	}
	return order
}
