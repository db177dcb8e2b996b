// Package alert flags backtest results whose metrics cross configured thresholds.
package alert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// "metric op value", e.g. "max_drawdown > 25" or "sharpe_ratio < -0.5"
var exprPattern = regexp.MustCompile(`^(\w+)\s*(>=|<=|==|!=|>|<)\s*(-?[\d.]+)$`)

// Rule defines an alert rule.
type Rule struct {
	Name     string
	Expr     string
	Severity string
	Message  string
}

type condition struct {
	metric    string
	op        string
	threshold float64
}

func (r *Rule) parse() (condition, error) {
	matches := exprPattern.FindStringSubmatch(strings.TrimSpace(r.Expr))
	if len(matches) != 4 {
		return condition{}, fmt.Errorf("rule %q: expression %q is not \"metric op value\"", r.Name, r.Expr)
	}
	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return condition{}, fmt.Errorf("rule %q: threshold: %w", r.Name, err)
	}
	return condition{metric: matches[1], op: matches[2], threshold: threshold}, nil
}

// Validate checks that the expression parses.
func (r *Rule) Validate() error {
	_, err := r.parse()
	return err
}

// Evaluate evaluates the rule expression against metrics.
// A malformed expression or a missing metric never triggers.
func (r *Rule) Evaluate(metrics map[string]float64) bool {
	c, err := r.parse()
	if err != nil {
		return false
	}
	value, exists := metrics[c.metric]
	if !exists {
		return false
	}

	switch c.op {
	case ">":
		return value > c.threshold
	case "<":
		return value < c.threshold
	case ">=":
		return value >= c.threshold
	case "<=":
		return value <= c.threshold
	case "==":
		return value == c.threshold
	case "!=":
		return value != c.threshold
	default:
		return false
	}
}

// Metric returns the metric name the rule reads, empty if the expression is malformed.
func (r *Rule) Metric() string {
	c, err := r.parse()
	if err != nil {
		return ""
	}
	return c.metric
}

// FormatMessage formats the alert message with the metric value.
func (r *Rule) FormatMessage(metrics map[string]float64) string {
	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(r.Severity), r.Name, r.Message)
	if metric := r.Metric(); metric != "" {
		if v, ok := metrics[metric]; ok {
			msg += fmt.Sprintf(" (%s=%.4g)", metric, v)
		}
	}
	return msg
}
