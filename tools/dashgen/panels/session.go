package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// HandshakeResults returns a timeseries panel of login handshakes by result.
func HandshakeResults() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Login Handshakes").
		Description("Completed email login handshakes by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (result) (increase(tgtg_handshakes_total{job="`+Job+`"}[1h]))`,
			"{{result}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// PollAttempts returns a timeseries panel of confirmation polls by answer.
func PollAttempts() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Confirmation Polls").
		Description("Login confirmation polls by response (202 = still waiting)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (status) (rate(tgtg_poll_attempts_total{job="`+Job+`"}[5m]))`,
			"{{status}}", "A",
		)).
		Unit("ops").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// TokenRefreshes returns a timeseries panel of access token refreshes by
// result. A rejected refresh means the session has to log in again.
func TokenRefreshes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Refreshes").
		Description("Access token refreshes by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(`tgtg:token_refreshes:rate5m`, "{{result}}", "A")).
		Unit("ops").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
