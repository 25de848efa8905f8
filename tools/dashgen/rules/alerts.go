package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// trademe-watch operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name:   "trademe-alerts",
			Labels: defaultLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "trademe-alerts",
					Rules: []Rule{
						{
							Alert: "TradeMeWatchDown",
							Expr:  `absent(up{job="trademe-watch"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Trade Me watch daemon is down",
								"description": "The trademe-watch job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "TradeMeWatchNotReady",
							Expr:  `trademe_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Trade Me watch readiness check is failing",
								"description": "The token store has been unreachable for more than 2 minutes.",
							},
						},
						{
							Alert: "TradeMeWatchHighErrorRate",
							Expr:  `trademe:http_errors:rate5m / trademe:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on the Trade Me watch daemon",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "TradeMeAPIErrors",
							Expr:  `trademe:api_errors:rate5m / trademe:api_requests:rate5m > 0.1`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Trade Me API calls are failing",
								"description": "More than 10% of Trade Me API calls have failed for the last 10 minutes.",
							},
						},
						{
							Alert: "TradeMePollErrors",
							Expr:  `sum(trademe:watch_poll_errors:rate5m) > 0`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Saved-search polls are failing",
								"description": "At least one saved search has failed to poll for more than 15 minutes.",
							},
						},
						{
							Alert: "TradeMeQuotaExhausted",
							Expr:  `increase(trademe_api_quota_exhausted_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Trade Me API quota window exhausted",
								"description": "Calls are being refused locally until the quota window resets.",
							},
						},
						{
							Alert: "TradeMeNotificationFailures",
							Expr:  `increase(trademe_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more new-listing notifications (Discord webhooks) have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
