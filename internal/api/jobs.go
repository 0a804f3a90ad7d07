package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// JobStatus is the lifecycle state of a batch job.
type JobStatus string

// Job states.
const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobCanceled  JobStatus = "canceled"
	JobFailed    JobStatus = "failed"
)

const (
	jobTTL          = time.Hour
	jobCleanupEvery = 10 * time.Minute
)

// Job is a batch run executing in the background.
type Job struct {
	created time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	id      string
	status  JobStatus
	errMsg  string
	results []model.ResultRow
	counts  map[model.Label]int
	hasID   bool
	total   int
	mu      sync.RWMutex
}

// JobView is the JSON form of a job.
type JobView struct {
	CreatedAt time.Time           `json:"created_at"`
	Counts    map[model.Label]int `json:"counts"`
	ID        string              `json:"id"`
	Status    JobStatus           `json:"status"`
	Error     string              `json:"error,omitempty"`
	Results   []model.ResultRow   `json:"results"`
	Done      int                 `json:"done"`
	Total     int                 `json:"total"`
}

// View returns a consistent snapshot of the job.
func (j *Job) View() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()

	results := make([]model.ResultRow, len(j.results))
	copy(results, j.results)
	counts := make(map[model.Label]int, len(j.counts))
	for k, v := range j.counts {
		counts[k] = v
	}
	return JobView{
		CreatedAt: j.created,
		Counts:    counts,
		ID:        j.id,
		Status:    j.status,
		Error:     j.errMsg,
		Results:   results,
		Done:      len(results),
		Total:     j.total,
	}
}

// Cancel stops the job between rows.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job settles or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) progress(p batch.Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = p.Results
	counts := make(map[model.Label]int, 4)
	for _, r := range p.Results {
		counts[r.PredictedSex]++
	}
	j.counts = counts
}

func (j *Job) finish(summary *batch.Summary, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	defer close(j.done)

	if summary != nil {
		j.results = summary.Results
		j.counts = summary.Counts
	}
	switch {
	case summary != nil && summary.Canceled:
		j.status = JobCanceled
	case err != nil:
		j.status = JobFailed
		j.errMsg = err.Error()
	default:
		j.status = JobCompleted
	}
}

// JobRegistry holds batch jobs for an hour after they are created.
type JobRegistry struct {
	cache *cache.Cache
	wg    sync.WaitGroup
}

// NewJobRegistry creates an empty registry.
func NewJobRegistry() *JobRegistry {
	c := cache.New(jobTTL, jobCleanupEvery)
	c.OnEvicted(func(_ string, v any) {
		if job, ok := v.(*Job); ok {
			job.Cancel()
		}
	})
	return &JobRegistry{cache: c}
}

// Start launches runner over rows under parent and registers the job.
func (r *JobRegistry) Start(parent context.Context, runner *batch.Runner, ds *batch.Dataset) *Job {
	ctx, cancel := context.WithCancel(parent)
	job := &Job{
		created: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
		id:      uuid.New().String(),
		status:  JobRunning,
		counts:  make(map[model.Label]int),
		hasID:   ds.HasID,
		total:   len(ds.Rows),
	}
	r.cache.SetDefault(job.id, job)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		summary, err := runner.Run(ctx, ds.Rows, job.progress)
		job.finish(summary, err)
	}()
	return job
}

// Get returns the job with id.
func (r *JobRegistry) Get(id string) (*Job, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	job, ok := v.(*Job)
	return job, ok
}

// Shutdown cancels every job and waits for them to settle.
func (r *JobRegistry) Shutdown() {
	for _, item := range r.cache.Items() {
		if job, ok := item.Object.(*Job); ok {
			job.Cancel()
		}
	}
	r.wg.Wait()
}
