// Package compliance evaluates the three-operator predicate DSL described
// in SPEC_FULL.md §3/§9, grounded on
// original_source/crates/nauto_compliance/src/lib.rs including its own
// test block's exact failure-string expectations.
package compliance

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/lammesen/netrust/model"
)

const (
	prefixContains = "contains:"
	prefixNot      = "not:"
)

// EvalResult is the outcome of evaluating one rule against one config.
type EvalResult struct {
	RuleName string
	Passed   bool
	Reason   string // empty when Passed
}

// Evaluate runs every rule against config and returns one EvalResult per
// rule, in rule order.
func Evaluate(rules []model.ComplianceRule, config string) []EvalResult {
	out := make([]EvalResult, 0, len(rules))
	for _, rule := range rules {
		out = append(out, evaluateRule(rule, config))
	}
	return out
}

func evaluateRule(rule model.ComplianceRule, config string) EvalResult {
	expr := rule.Expression
	switch {
	case strings.HasPrefix(expr, prefixContains):
		literal := strings.TrimPrefix(expr, prefixContains)
		if strings.Contains(config, literal) {
			return EvalResult{RuleName: rule.Name, Passed: true}
		}
		return EvalResult{RuleName: rule.Name, Reason: fmt.Sprintf("missing required pattern %s", literal)}

	case strings.HasPrefix(expr, prefixNot):
		literal := strings.TrimPrefix(expr, prefixNot)
		if strings.Contains(config, literal) {
			return EvalResult{RuleName: rule.Name, Reason: fmt.Sprintf("found forbidden pattern %s", literal)}
		}
		return EvalResult{RuleName: rule.Name, Passed: true}

	default:
		// bare literal == contains:
		if strings.Contains(config, expr) {
			return EvalResult{RuleName: rule.Name, Passed: true}
		}
		return EvalResult{RuleName: rule.Name, Reason: fmt.Sprintf("missing required pattern %s", expr)}
	}
}

// DeviceEvaluation is the per-device compliance outcome the Job Engine's
// compliance short-circuit turns into a TaskSummary.
type DeviceEvaluation struct {
	DeviceID string
	Results  []EvalResult
}

// Passed reports whether every rule in the evaluation passed.
func (d DeviceEvaluation) Passed() bool {
	for _, r := range d.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// EvaluateFleet evaluates rules against every device's config in corpus,
// mirroring the source's per-device spawn_blocking shape. It starts one
// goroutine per device; a semaphore sized to maxWorkers bounds how many of
// them evaluate at the same time.
func EvaluateFleet(ctx context.Context, rules []model.ComplianceRule, corpus map[string]string, deviceIDs []string, maxWorkers int) []DeviceEvaluation {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	sem := semaphore.NewWeighted(int64(maxWorkers))
	out := make([]DeviceEvaluation, len(deviceIDs))
	done := make(chan struct{}, len(deviceIDs))

	for i, id := range deviceIDs {
		i, id := i, id
		go func() {
			defer func() { done <- struct{}{} }()
			if err := sem.Acquire(ctx, 1); err != nil {
				out[i] = DeviceEvaluation{DeviceID: id}
				return
			}
			defer sem.Release(1)

			config, ok := corpus[id]
			if !ok {
				out[i] = DeviceEvaluation{
					DeviceID: id,
					Results:  []EvalResult{{RuleName: "_corpus", Reason: "no config provided for compliance evaluation"}},
				}
				return
			}
			out[i] = DeviceEvaluation{DeviceID: id, Results: Evaluate(rules, config)}
		}()
	}
	for range deviceIDs {
		<-done
	}
	return out
}

// Summary aggregates pass/fail counts across a fleet evaluation, named in
// SPEC_FULL.md §3 as a supplemental type.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize computes a Summary over a set of device evaluations.
func Summarize(evals []DeviceEvaluation) Summary {
	s := Summary{Total: len(evals)}
	for _, e := range evals {
		if e.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// ExportCSV renders device evaluations as CSV (device_id,rule,passed,reason),
// grounded on original_source's nauto_compliance::export_csv.
func ExportCSV(evals []DeviceEvaluation) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"device_id", "rule", "passed", "reason"}); err != nil {
		return "", err
	}
	for _, e := range evals {
		for _, r := range e.Results {
			if err := w.Write([]string{e.DeviceID, r.RuleName, fmt.Sprintf("%t", r.Passed), r.Reason}); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// exportRecord is the JSON shape for ExportJSON, mirroring
// nauto_compliance::export_json's field names.
type exportRecord struct {
	DeviceID  string      `json:"device_id"`
	Passed    bool        `json:"passed"`
	Results   []EvalResult `json:"results"`
	ExportedAt time.Time  `json:"exported_at"`
}

// ExportJSON renders device evaluations as a JSON array, one record per
// device, stamped with the given timestamp (callers pass a timestamp
// captured once, since package compliance never calls time.Now itself).
func ExportJSON(evals []DeviceEvaluation, exportedAt time.Time) (string, error) {
	records := make([]exportRecord, 0, len(evals))
	for _, e := range evals {
		records = append(records, exportRecord{DeviceID: e.DeviceID, Passed: e.Passed(), Results: e.Results, ExportedAt: exportedAt})
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
