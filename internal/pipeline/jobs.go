package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/output"
	"github.com/google/uuid"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusRanking   JobStatus = "ranking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single persona analysis submitted over HTTP.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	Collection string `json:"collection"`

	Persona     string `json:"persona"`
	JobToBeDone string `json:"job_to_be_done"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs []Input
	result *output.AnalysisResult
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	SectionsRanked     int      `json:"sections_ranked"`
	Errors             []string `json:"errors"`
}

// NewJob creates a queued job for inputs.
func NewJob(collection, persona, job string, inputs []Input) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.New().String(),
		Collection:  collection,
		Persona:     persona,
		JobToBeDone: job,
		Status:      StatusQueued,
		Phase:       "queued",
		Progress:    Progress{TotalDocuments: len(inputs)},
		CreatedAt:   now,
		UpdatedAt:   now,
		inputs:      inputs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrDocumentsProcessed atomically increments documents processed and
// returns the new count.
func (j *Job) IncrDocumentsProcessed() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsProcessed++
	j.UpdatedAt = time.Now()
	return j.Progress.DocumentsProcessed
}

// SetResult stores the finished analysis and releases the inputs.
func (j *Job) SetResult(res output.AnalysisResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.inputs = nil
	j.Progress.SectionsRanked = len(res.ExtractedSections)
	j.UpdatedAt = time.Now()
}

// Inputs returns the documents to analyze.
func (j *Job) Inputs() []Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string                 `json:"job_id"`
	Collection  string                 `json:"collection"`
	Persona     string                 `json:"persona"`
	JobToBeDone string                 `json:"job_to_be_done"`
	Status      JobStatus              `json:"status"`
	Phase       string                 `json:"phase"`
	Progress    Progress               `json:"progress"`
	Result      *output.AnalysisResult `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		Collection:  j.Collection,
		Persona:     j.Persona,
		JobToBeDone: j.JobToBeDone,
		Status:      j.Status,
		Phase:       j.Phase,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsProcessed: j.Progress.DocumentsProcessed,
			SectionsRanked:     j.Progress.SectionsRanked,
			Errors:             errs,
		},
		Result: j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
