package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// APICallsByEndpoint returns a timeseries panel showing Trade Me API calls
// per second, split by endpoint.
func APICallsByEndpoint() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Calls by Endpoint").
		Description("Trade Me API calls per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(rate(trademe_api_requests_total{%s}[5m])) by (endpoint)`, JobSelector()),
			"{{endpoint}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// APILatency returns a timeseries panel showing p95 Trade Me API latency per
// endpoint.
func APILatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Latency (p95)").
		Description("95th percentile Trade Me API call duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(
				`histogram_quantile(0.95, sum(rate(trademe_api_request_duration_seconds_bucket{%s}[5m])) by (le, endpoint))`,
				JobSelector(),
			),
			"{{endpoint}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// APIErrorsAndRetries returns a timeseries panel plotting failed calls
// against retried calls.
func APIErrorsAndRetries() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Errors / Retries").
		Description("Failed and retried Trade Me API calls per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`trademe:api_errors:rate5m`, "errors/s", "A")).
		WithTarget(PromQuery(`trademe:api_retries:rate5m`, "retries/s", "B")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// QuotaUsage returns a timeseries panel showing calls made in the current
// quota window with a threshold line at DefaultQuota.
func QuotaUsage() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Quota Usage vs Budget").
		Description(fmt.Sprintf("Calls in the current quota window (budget: %d)", DefaultQuota)).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`trademe_api_quota_usage{`+JobSelector()+`}`, "usage", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(float64(DefaultQuota)*0.8, float64(DefaultQuota))).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// QuotaExhausted returns a stat panel showing calls refused by the client
// quota in the past 24 hours.
func QuotaExhausted() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Quota Refusals (24h)").
		Description("Calls refused because the quota window was exhausted").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`increase(trademe_api_quota_exhausted_total{`+JobSelector()+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
