package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SearchRate returns a timeseries panel of item searches by status class.
func SearchRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Item Searches").
		Description("Item search requests per second by response class").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`tgtg:search_requests:rate5m`, "{{code}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SearchLatency returns a timeseries panel of item search latency.
func SearchLatency() *timeseries.PanelBuilder {
	const hist = "tgtg_search_duration_seconds"
	return timeseries.NewPanelBuilder().
		Title("Search Latency").
		Description("Item search duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(Quantile(0.50, hist), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, hist), "p95", "B")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(2, 5)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
