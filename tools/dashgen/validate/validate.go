// Package validate checks generated dashboards and rules before they are
// written: every PromQL expression must parse and every metric it selects
// must be one the daemon exports or a recording rule defines.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/trademe/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings are
// reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Merge appends the findings of other to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Dashboard validates every Prometheus target in dash against known.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	// Walk the JSON form: targets are stored behind a variant interface,
	// and the serialized shape is what Grafana actually loads.
	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}
	var doc struct {
		Panels []jsonPanel `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for _, p := range doc.Panels {
		if p.Type == "row" {
			for _, inner := range p.Panels {
				res.Merge(panel(inner, known))
			}
			continue
		}
		res.Merge(panel(p, known))
	}
	return res
}

type jsonPanel struct {
	Type    string      `json:"type"`
	Title   string      `json:"title"`
	Panels  []jsonPanel `json:"panels"`
	Targets []struct {
		Expr  string `json:"expr"`
		RefID string `json:"refId"`
	} `json:"targets"`
}

func panel(p jsonPanel, known map[string]bool) Result {
	var res Result
	if len(p.Targets) == 0 {
		res.warnf("panel %q has no targets", p.Title)
		return res
	}

	refs := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if refs[t.RefID] {
			res.errorf("panel %q: duplicate refId %q", p.Title, t.RefID)
		}
		refs[t.RefID] = true
		res.Merge(Expr(fmt.Sprintf("panel %q", p.Title), t.Expr, known))
	}
	return res
}

// Rules validates every rule in cr. Alerts need a severity label and summary
// annotation; recording rule names must be listed in known so dashboards can
// reference them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			switch {
			case r.Record != "" && r.Alert != "":
				res.errorf("group %q: rule sets both record %q and alert %q", g.Name, r.Record, r.Alert)
			case r.Record != "":
				if !known[r.Record] {
					res.warnf("recording rule %q is not in the known metrics list", r.Record)
				}
			case r.Alert != "":
				if r.Labels["severity"] == "" {
					res.errorf("alert %q has no severity label", r.Alert)
				}
				if r.Annotations["summary"] == "" {
					res.errorf("alert %q has no summary annotation", r.Alert)
				}
			default:
				res.errorf("group %q: rule has neither record nor alert", g.Name)
			}

			name := r.Record
			if name == "" {
				name = r.Alert
			}
			res.Merge(Expr(fmt.Sprintf("rule %q", name), r.Expr, known))
		}
	}
	return res
}

var counterFuncs = map[string]bool{
	"rate":     true,
	"irate":    true,
	"increase": true,
}

// Expr parses a single PromQL expression and checks the metrics it selects.
// where names the expression's location in findings.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result
	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return res
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: %v", where, err)
		return res
	}

	parser.Inspect(node, func(n parser.Node, path []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := vs.Name
		if name == "" {
			res.warnf("%s: selector without a metric name", where)
			return nil
		}
		if !isKnown(name, known) {
			res.errorf("%s: unknown metric %q", where, name)
			return nil
		}
		if strings.HasSuffix(name, "_total") && !insideCounterFunc(path) {
			res.warnf("%s: counter %q used without rate or increase", where, name)
		}
		return nil
	})
	return res
}

// isKnown accepts histogram series by their base metric name.
func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

func insideCounterFunc(path []parser.Node) bool {
	for _, n := range path {
		if call, ok := n.(*parser.Call); ok && counterFuncs[call.Func.Name] {
			return true
		}
	}
	return false
}
