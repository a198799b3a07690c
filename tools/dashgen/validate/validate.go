// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and every metric it selects must be known.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/tgtg-watcher/tools/dashgen/rules"
)

// Result collects validation findings. Errors make an artifact unusable;
// warnings point at metrics the watcher does not export.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Dashboard validates every query target in every panel, including panels
// nested in rows.
func Dashboard(d dashboard.Dashboard, known map[string]bool) Result {
	var res Result
	for _, p := range d.Panels {
		if p.Panel != nil {
			res.merge(panel(p.Panel, known))
		}
		if p.RowPanel != nil {
			for i := range p.RowPanel.Panels {
				res.merge(panel(&p.RowPanel.Panels[i], known))
			}
		}
	}
	return res
}

func panel(p *dashboard.Panel, known map[string]bool) Result {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}

	var res Result
	for i, target := range p.Targets {
		expr, err := targetExpr(target)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("panel %q target %d: %v", title, i, err))
			continue
		}
		res.merge(Expr(fmt.Sprintf("panel %q", title), expr, known))
	}
	return res
}

// targetExpr pulls the expr field out of a query target without depending on
// the concrete datasource type.
func targetExpr(target any) (string, error) {
	raw, err := json.Marshal(target)
	if err != nil {
		return "", fmt.Errorf("encoding target: %w", err)
	}
	var q struct {
		Expr string `json:"expr"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", fmt.Errorf("decoding target: %w", err)
	}
	if q.Expr == "" {
		return "", fmt.Errorf("target has no expr")
	}
	return q.Expr, nil
}

// Rules validates every expression in a PrometheusRule. Recorded series
// must be listed in known so dashboards can reference them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			where := fmt.Sprintf("%s/%s", g.Name, name)
			if r.Record != "" && !known[r.Record] {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: recorded series is not in the known metric list", where))
			}
			res.merge(Expr(where, r.Expr, known))
		}
	}
	return res
}

// Expr parses one PromQL expression and checks its selectors.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", where, expr, err))
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !known[baseMetric(vs.Name)] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: unknown metric %q", where, vs.Name))
		}
		return nil
	})

	return res
}

// baseMetric strips the series suffixes a histogram exposes.
func baseMetric(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			return base
		}
	}
	return name
}
