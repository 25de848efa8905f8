package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name:   "trademe-recording-rules",
			Labels: defaultLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "trademe-recording",
					Rules: []Rule{
						{
							Record: "trademe:http_requests:rate5m",
							Expr:   `sum(rate(trademe_http_requests_total[5m]))`,
						},
						{
							Record: "trademe:http_errors:rate5m",
							Expr:   `sum(rate(trademe_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "trademe:api_requests:rate5m",
							Expr:   `sum(rate(trademe_api_requests_total[5m]))`,
						},
						{
							Record: "trademe:api_errors:rate5m",
							Expr:   `sum(rate(trademe_api_requests_total{status=~"error|4..|5.."}[5m]))`,
						},
						{
							Record: "trademe:api_retries:rate5m",
							Expr:   `sum(rate(trademe_api_retries_total[5m]))`,
						},
						{
							Record: "trademe:watch_new_listings:rate5m",
							Expr:   `rate(trademe_watch_new_listings_total[5m])`,
						},
						{
							Record: "trademe:watch_poll_errors:rate5m",
							Expr:   `rate(trademe_watch_poll_errors_total[5m])`,
						},
					},
				},
			},
		},
	}
}
