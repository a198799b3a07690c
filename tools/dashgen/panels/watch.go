package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// LastWatchCycle returns a stat panel showing time since the last watch
// cycle in which every search succeeded.
func LastWatchCycle() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Last Clean Cycle").
		Description("Time since the last watch cycle without failed searches").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`time() - tgtg_watch_last_success_timestamp{job="`+Job+`"}`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(900, 3600)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// WatchErrors returns a stat panel with failed searches in the last hour.
func WatchErrors() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Failed Searches (1h)").
		Description("Saved searches that failed during watch cycles in the last hour").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(tgtg_watch_errors_total{job="`+Job+`"}[1h])`, "", "A")).
		Thresholds(ThresholdsGreenRed(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// CycleDuration returns a timeseries panel of watch cycle duration.
func CycleDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycle Duration (p95)").
		Description("95th percentile duration of a full watch cycle").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(Quantile(0.95, "tgtg_watch_cycle_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BagsAvailable returns a timeseries panel of bags in stock over time.
func BagsAvailable() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Bags In Stock").
		Description("Bags with stock seen per cycle and snapshot write rate").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`tgtg_bags_available{job="`+Job+`"}`, "in stock", "A")).
		WithTarget(PromQuery(`tgtg:snapshots_recorded:rate5m * 60`, "snapshots/min", "B")).
		FillOpacity(20).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
