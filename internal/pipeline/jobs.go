package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// JobStatus represents the state of a batch decode job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusDecoding   JobStatus = "decoding"
	StatusDelivering JobStatus = "delivering"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// PayloadItem is one named payload submitted for batch decoding.
type PayloadItem struct {
	Name string
	Raw  json.RawMessage
}

// ItemResult is the decoded output for one payload item.
type ItemResult struct {
	Name        string           `json:"name"`
	PayloadHash string           `json:"payload_hash"`
	Sections    []secdoc.Section `json:"sections"`
	Delivered   bool             `json:"delivered,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Progress tracks batch processing progress.
type Progress struct {
	TotalItems    int      `json:"total_items"`
	ItemsDecoded  int      `json:"items_decoded"`
	SectionsTotal int      `json:"sections_total"`
	Delivered     int      `json:"delivered"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob(userID string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Job tracks the state of a single batch decode.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	UserID string `json:"user_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	items   []PayloadItem
	results []ItemResult
	errors  []string
}

// SetItems sets the payloads to decode.
func (j *Job) SetItems(items []PayloadItem) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.items = items
	j.Progress.TotalItems = len(items)
}

// Items returns the payloads to decode.
func (j *Job) Items() []PayloadItem {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.items
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

// AddResult records a decoded item.
func (j *Job) AddResult(r ItemResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, r)
	j.Progress.ItemsDecoded++
	j.Progress.SectionsTotal += len(r.Sections)
	j.UpdatedAt = time.Now()
}

// MarkDelivered flags a result as delivered to the webhook.
func (j *Job) MarkDelivered(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.results {
		if j.results[i].Name == name && !j.results[i].Delivered {
			j.results[i].Delivered = true
			j.Progress.Delivered++
			break
		}
	}
	j.UpdatedAt = time.Now()
}

// lastUpdated reads the update timestamp under the job lock; Cleanup must not
// race with writers that bump UpdatedAt.
func (j *Job) lastUpdated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// Results returns a copy of the decoded results.
func (j *Job) Results() []ItemResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ItemResult, len(j.results))
	copy(out, j.results)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	UserID   string    `json:"user_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		UserID: j.UserID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalItems:    j.Progress.TotalItems,
			ItemsDecoded:  j.Progress.ItemsDecoded,
			SectionsTotal: j.Progress.SectionsTotal,
			Delivered:     j.Progress.Delivered,
			Errors:        errs,
		},
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// PayloadHashHex computes SHA-256 of a payload and returns the hex string.
func PayloadHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
