package judge

import (
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxReasonDetail = 512

// Aggregate folds per-test-case results into a single verdict. The first
// result that is not Accepted decides the failure; metrics are extracted
// for every result regardless.
func Aggregate(results []JudgeResult) Verdict {
	verdict := Verdict{
		Passed:         true,
		PerCaseMetrics: make([]CaseMetrics, len(results)),
		Results:        results,
	}

	for i, res := range results {
		verdict.PerCaseMetrics[i] = extractMetrics(i, res)

		if verdict.FailedIndex != nil || res.Status.Accepted() {
			continue
		}
		index := i
		reason := failureReason(res)
		category := res.Status.Category()
		verdict.Passed = false
		verdict.FailedIndex = &index
		verdict.FailedReason = &reason
		verdict.FailedCategory = &category
	}

	return verdict
}

func extractMetrics(index int, res JudgeResult) CaseMetrics {
	var metrics CaseMetrics
	if t, err := ParseTime(string(res.Time)); err == nil {
		metrics.TimeSeconds = &t
	} else if res.Time != "" {
		log.WithField("test_case", index).Debug(err)
	}
	if m, err := ParseMemory(string(res.Memory)); err == nil {
		metrics.MemoryKB = &m
	} else if res.Memory != "" {
		log.WithField("test_case", index).Debug(err)
	}
	return metrics
}

func failureReason(res JudgeResult) string {
	reason := strings.TrimSpace(res.Status.Description)
	if reason == "" {
		reason = res.Status.Category()
	}

	// most specific diagnostics first
	for _, detail := range []*string{res.CompileOutput, res.Stderr, res.Message} {
		if detail == nil {
			continue
		}
		d := strings.TrimSpace(*detail)
		if d == "" {
			continue
		}
		if len(d) > maxReasonDetail {
			d = truncateRunes(d, maxReasonDetail) + "..."
		}
		return reason + ": " + d
	}
	return reason
}

// truncateRunes cuts s to at most n bytes without splitting a character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
