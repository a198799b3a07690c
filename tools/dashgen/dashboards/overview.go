// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/tgtg-watcher/tools/dashgen/panels"
)

// OverviewUID is the stable dashboard uid; links and provisioning use it.
const OverviewUID = "tgtg-overview"

// BuildOverview constructs the watcher overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("TGTG Watcher").
		Uid(OverviewUID).
		Tags([]string{"tgtg", "tgtg-watcher"}).
		Refresh("30s").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.BagsAvailableStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Watcher").
		WithPanel(panels.LastWatchCycle()).
		WithPanel(panels.WatchErrors()).
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.BagsAvailable()))

	b.WithRow(dashboard.NewRowBuilder("Item Search").
		WithPanel(panels.SearchRate()).
		WithPanel(panels.SearchLatency()))

	b.WithRow(dashboard.NewRowBuilder("Session").
		WithPanel(panels.HandshakeResults()).
		WithPanel(panels.PollAttempts()).
		WithPanel(panels.TokenRefreshes()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	b.WithRow(dashboard.NewRowBuilder("Alerts").
		WithPanel(panels.RestockAlerts()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
