// Package job tracks asynchronous backtest runs in memory.
package job

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/metrics"
)

// Status represents job status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var statuses = []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed}

// Finished reports whether the job reached a terminal status
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one backtest request and its outcome.
type Job struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	Request     backtest.Options `json:"request"`
	Result      *backtest.Result `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	ErrorCode   string           `json:"errorCode,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// Store manages async jobs.
type Store struct {
	jobs    map[string]*Job
	order   []string // insertion order for eviction
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithMetrics publishes per-status job counts
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Store) { s.metrics = reg }
}

// NewStore creates a job store holding at most maxSize jobs. Finished jobs
// older than ttl are purged; ttl <= 0 keeps them until evicted by size.
func NewStore(maxSize int, ttl time.Duration, opts ...Option) *Store {
	if maxSize <= 0 {
		maxSize = 1000
	}
	s := &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a pending job for req and returns a copy of it. A full
// store makes room by evicting its oldest finished job; when every job is
// still pending or running, Create fails with core.ErrJobsSaturated.
func (s *Store) Create(req backtest.Options) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)
	if len(s.jobs) >= s.maxSize && !s.evictLocked() {
		return nil, core.WrapError(core.ErrJobsSaturated,
			fmt.Errorf("%d jobs pending or running", len(s.jobs)))
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.publishLocked()

	jobCopy := *job
	return &jobCopy, nil
}

// Get retrieves a copy of a job by ID.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, core.ErrJobNotFound
	}
	jobCopy := *job
	return &jobCopy, nil
}

// Update modifies a job using an update function.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = s.now()
	s.publishLocked()
	return nil
}

// Start marks a job running.
func (s *Store) Start(id string) error {
	return s.Update(id, func(j *Job) {
		j.Status = StatusRunning
	})
}

// Complete records a successful result.
func (s *Store) Complete(id string, result *backtest.Result) error {
	return s.Update(id, func(j *Job) {
		now := s.now()
		j.Status = StatusCompleted
		j.Result = result
		j.CompletedAt = &now
	})
}

// Fail records err as the job's failure message.
func (s *Store) Fail(id string, err error) error {
	return s.Update(id, func(j *Job) {
		now := s.now()
		j.Status = StatusFailed
		j.Error = err.Error()
		var coded *core.Error
		if errors.As(err, &coded) {
			j.ErrorCode = coded.Code
		}
		j.CompletedAt = &now
	})
}

// List returns all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, *s.jobs[s.order[i]])
	}
	return result
}

// Counts returns the number of jobs per status.
func (s *Store) Counts() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countsLocked()
}

func (s *Store) countsLocked() map[Status]int {
	counts := make(map[Status]int, len(statuses))
	for _, st := range statuses {
		counts[st] = 0
	}
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts
}

func (s *Store) publishLocked() {
	if s.metrics == nil {
		return
	}
	for st, n := range s.countsLocked() {
		s.metrics.SetJobs(string(st), n)
	}
}

// purgeLocked drops finished jobs whose last update is older than ttl
func (s *Store) purgeLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status.Finished() && now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// evictLocked removes the oldest finished job and reports whether one existed
func (s *Store) evictLocked() bool {
	for i, id := range s.order {
		if s.jobs[id].Status.Finished() {
			delete(s.jobs, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			return true
		}
	}
	return false
}
