package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NewListingsRate returns a timeseries panel showing newly seen listings per
// minute for each saved search.
func NewListingsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("New Listings / min").
		Description("Listings seen for the first time, per saved search").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`sum(trademe:watch_new_listings:rate5m) by (search) * 60`, "{{search}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PollErrors returns a timeseries panel showing failed polls per minute.
func PollErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Poll Errors / min").
		Description("Failed saved-search polls per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`sum(trademe:watch_poll_errors:rate5m) by (search) * 60`, "{{search}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PollDuration returns a timeseries panel showing the p95 duration of a full
// poll cycle.
func PollDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Poll Cycle Duration (p95)").
		Description("95th percentile duration of a poll over every saved search").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(
				`histogram_quantile(0.95, sum(rate(trademe_watch_poll_duration_seconds_bucket{%s}[5m])) by (le))`,
				JobSelector(),
			),
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
