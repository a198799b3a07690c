package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// tgtg-watcher operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "tgtg-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "tgtg-alerts",
					Rules: []Rule{
						{
							Alert: "TgtgWatcherDown",
							Expr:  `absent(up{job="tgtg-watcher"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "TGTG watcher is down",
								"description": "The tgtg-watcher job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "TgtgSessionLost",
							Expr:  `tgtg_readyz_up == 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "TGTG watcher is not ready",
								"description": "The store is unreachable or the marketplace session is logged out. A rejected refresh needs a restart and a new email login.",
							},
						},
						{
							Alert: "TgtgRefreshRejected",
							Expr:  `increase(tgtg_token_refreshes_total{result="rejected"}[10m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Access token refresh was rejected",
								"description": "The marketplace rejected the refresh token and the session was cleared.",
							},
						},
						{
							Alert: "TgtgHighErrorRate",
							Expr:  `tgtg:http_errors:rate5m / tgtg:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on the TGTG watcher",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "TgtgSearchFailures",
							Expr:  `increase(tgtg_watch_errors_total[15m]) > 0`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Saved searches are failing",
								"description": "Watch cycles have had failing searches for more than 15 minutes.",
							},
						},
						{
							Alert: "TgtgWatchStalled",
							Expr:  `time() - tgtg_watch_last_success_timestamp > 3600`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "No clean watch cycle in the last hour",
								"description": "No watch cycle has completed without failed searches for over an hour.",
							},
						},
						{
							Alert: "TgtgNotificationFailures",
							Expr:  `increase(tgtg_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more restock notifications (Discord webhooks) have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
