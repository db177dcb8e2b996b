package alert

import (
	"go.uber.org/zap"
)

// Alert is one triggered rule for one result.
type Alert struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Subject  string  `json:"subject"`
	Value    float64 `json:"value"`
	Message  string  `json:"message"`
}

// Evaluator checks metric sets against a fixed list of rules.
type Evaluator struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEvaluator validates rules and creates an evaluator.
func NewEvaluator(rules []Rule, logger ...*zap.Logger) (*Evaluator, error) {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	var log *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = zap.NewNop()
	}
	return &Evaluator{rules: append([]Rule(nil), rules...), logger: log}, nil
}

// Rules returns the number of configured rules.
func (e *Evaluator) Rules() int {
	return len(e.rules)
}

// Check evaluates every rule against metrics and returns the triggered ones.
// Subject names the result in messages and logs, e.g. "rsi:AAPL".
func (e *Evaluator) Check(subject string, metrics map[string]float64) []Alert {
	var alerts []Alert
	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.Evaluate(metrics) {
			continue
		}

		a := Alert{
			Rule:     rule.Name,
			Severity: rule.Severity,
			Subject:  subject,
			Value:    metrics[rule.Metric()],
			Message:  rule.FormatMessage(metrics),
		}
		alerts = append(alerts, a)

		e.logger.Warn("alert triggered",
			zap.String("rule", a.Rule),
			zap.String("severity", a.Severity),
			zap.String("subject", subject),
			zap.Float64("value", a.Value),
		)
	}
	return alerts
}
