package submission_service

import (
	"context"
	"fmt"

	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/problem_service"
)

var difficulties = []string{
	problem_service.DifficultyEasy,
	problem_service.DifficultyMedium,
	problem_service.DifficultyHard,
}

type metricAverage struct {
	sum   float64
	count int
}

func (m *metricAverage) add(v float64) {
	m.sum += v
	m.count++
}

func (m metricAverage) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

type statsAccumulator struct {
	submissions int
	accepted    int
	time        metricAverage
	memory      metricAverage
}

func (a *statsAccumulator) add(status string, times, memories []*string) {
	a.submissions++
	if status == StatusAccepted {
		a.accepted++
	}
	// malformed or missing values are skipped
	for _, t := range times {
		if t == nil {
			continue
		}
		if v, err := judge.ParseTime(*t); err == nil {
			a.time.add(v)
		}
	}
	for _, m := range memories {
		if m == nil {
			continue
		}
		if v, err := judge.ParseMemory(*m); err == nil {
			a.memory.add(v)
		}
	}
}

func formatTime(seconds float64) string {
	return fmt.Sprintf("%.3f s", seconds)
}

func formatMemory(kb float64) string {
	return fmt.Sprintf("%.2f KB", kb)
}

// UserStats is computed from stored submissions on every call.
func (sub *SubmissionService) UserStats(ctx context.Context) (UserStats, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return UserStats{}, err
	}

	solved, err := sub.DB.CountProblemsSolvedByDifficulty(ctx, claims.UserId)
	if err != nil {
		return UserStats{}, drill_errors.HandleDBErrors(err, errMsgs, "cannot count solved problems")
	}
	rows, err := sub.DB.ListSubmissionMetricsByUser(ctx, claims.UserId)
	if err != nil {
		return UserStats{}, drill_errors.HandleDBErrors(err, errMsgs, "cannot list submission metrics")
	}

	stats := UserStats{
		AcceptedProblemsByDifficulty: make(map[string]int, len(difficulties)),
		ByDifficulty:                 make(map[string]DifficultyStats, len(difficulties)),
	}
	for _, d := range difficulties {
		stats.AcceptedProblemsByDifficulty[d] = 0
	}
	for _, row := range solved {
		stats.AcceptedProblemsByDifficulty[row.Difficulty] = int(row.Solved)
	}

	var overall statsAccumulator
	perDifficulty := make(map[string]*statsAccumulator, len(difficulties))
	for _, d := range difficulties {
		perDifficulty[d] = &statsAccumulator{}
	}
	for _, row := range rows {
		times, memories := decodeStrings(row.Time), decodeStrings(row.Memory)
		overall.add(row.Status, times, memories)
		acc, ok := perDifficulty[row.Difficulty]
		if !ok {
			acc = &statsAccumulator{}
			perDifficulty[row.Difficulty] = acc
		}
		acc.add(row.Status, times, memories)
	}

	stats.TotalSubmissions = overall.submissions
	stats.AcceptedSubmissions = overall.accepted
	stats.AverageTime = formatTime(overall.time.value())
	stats.AverageMemory = formatMemory(overall.memory.value())
	for d, acc := range perDifficulty {
		stats.ByDifficulty[d] = DifficultyStats{
			Submissions:   acc.submissions,
			Accepted:      acc.accepted,
			AverageTime:   formatTime(acc.time.value()),
			AverageMemory: formatMemory(acc.memory.value()),
		}
	}
	return stats, nil
}
