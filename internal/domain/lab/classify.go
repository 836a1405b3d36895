package lab

import (
	"strconv"
	"strings"
)

// Classification is the verdict computed for a recorded value. It is a side
// channel for callers (result highlighting, summaries) and is never stored:
// reclassifying from the snapshot thresholds means a catalog correction shows
// up immediately.
type Classification string

const (
	ClassNormal       Classification = "normal"
	ClassAbnormal     Classification = "abnormal"
	ClassCritical     Classification = "critical"
	ClassNotEvaluable Classification = "not_evaluable"
)

// Classify compares a recorded raw value against a parameter's thresholds.
//
// Blank values are NotEvaluable. Values that do not parse as numbers are
// Normal: qualitative results ("Positive", "Reactive") carry no automatic
// clinical ranking, so they are reported as recorded without a flag. Numeric
// values check critical bounds first — critical wins over abnormal when a
// value is beyond both. Boundary values are inside the normal range; the
// critical flag likewise fires only strictly beyond its bounds.
func Classify(p ParameterSnapshot, rawValue string) Classification {
	trimmed := strings.TrimSpace(rawValue)
	if trimmed == "" {
		return ClassNotEvaluable
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return ClassNormal
	}

	if (p.CriticalMin != nil && v < *p.CriticalMin) || (p.CriticalMax != nil && v > *p.CriticalMax) {
		return ClassCritical
	}
	if (p.RefMin != nil && v < *p.RefMin) || (p.RefMax != nil && v > *p.RefMax) {
		return ClassAbnormal
	}
	return ClassNormal
}
