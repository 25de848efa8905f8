// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/trademe/tools/dashgen/panels"
)

// BuildOverview constructs the Trade Me Watch dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Trade Me Watch").
		Uid("trademe-overview").
		Tags([]string{"trademe", "trademe-watch"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Trade Me API.
	b.WithRow(dashboard.NewRowBuilder("Trade Me API").
		WithPanel(panels.APICallsByEndpoint()).
		WithPanel(panels.APILatency()).
		WithPanel(panels.APIErrorsAndRetries()).
		WithPanel(panels.QuotaUsage()).
		WithPanel(panels.QuotaExhausted()))

	// Row 4: Saved searches.
	b.WithRow(dashboard.NewRowBuilder("Saved Searches").
		WithPanel(panels.NewListingsRate()).
		WithPanel(panels.PollErrors()).
		WithPanel(panels.PollDuration()))

	// Row 5: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsRate()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
