package judge

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

type State string

const (
	StateResolving   State = "resolving"
	StateSubmitting  State = "submitting"
	StatePolling     State = "polling"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

type RunInfo struct {
	ID        uuid.UUID `json:"id"`
	Language  string    `json:"language"`
	State     State     `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

// RunRegistry tracks judging runs that are in flight. Runs never share
// entries, so each entry is only written by the goroutine driving it.
type RunRegistry struct {
	runs *xsync.MapOf[uuid.UUID, RunInfo]
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs: xsync.NewMapOf[uuid.UUID, RunInfo](),
	}
}

func (r *RunRegistry) begin(language string) RunInfo {
	info := RunInfo{
		ID:        uuid.New(),
		Language:  language,
		State:     StateResolving,
		StartedAt: time.Now(),
	}
	r.runs.Store(info.ID, info)
	return info
}

func (r *RunRegistry) transition(id uuid.UUID, state State) {
	info, ok := r.runs.Load(id)
	if !ok {
		return
	}
	info.State = state
	r.runs.Store(id, info)
}

func (r *RunRegistry) finish(id uuid.UUID) {
	r.runs.Delete(id)
}

// Active returns the number of runs that have not finished yet.
func (r *RunRegistry) Active() int {
	return r.runs.Size()
}

// Snapshot lists in-flight runs, oldest first.
func (r *RunRegistry) Snapshot() []RunInfo {
	infos := make([]RunInfo, 0, r.runs.Size())
	r.runs.Range(func(_ uuid.UUID, info RunInfo) bool {
		infos = append(infos, info)
		return true
	})
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}
