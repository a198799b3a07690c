package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "tgtg-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "tgtg-recording",
					Rules: []Rule{
						{
							Record: "tgtg:http_requests:rate5m",
							Expr:   `sum(rate(tgtg_http_requests_total[5m]))`,
						},
						{
							Record: "tgtg:http_errors:rate5m",
							Expr:   `sum(rate(tgtg_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "tgtg:search_requests:rate5m",
							Expr:   `sum by (code) (rate(tgtg_search_requests_total[5m]))`,
						},
						{
							Record: "tgtg:token_refreshes:rate5m",
							Expr:   `sum by (result) (rate(tgtg_token_refreshes_total[5m]))`,
						},
						{
							Record: "tgtg:snapshots_recorded:rate5m",
							Expr:   `rate(tgtg_snapshots_recorded_total[5m])`,
						},
						{
							Record: "tgtg:notification_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum(rate(tgtg_notification_duration_seconds_bucket[5m])) by (le))`,
						},
					},
				},
			},
		},
	}
}
