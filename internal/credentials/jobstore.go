package credentials

import (
	"sync"

	"server/internal/domain"
)

type jobEntry struct {
	keys    Keys
	options *domain.InfographicOptions
}

// JobStore keeps credentials for in-flight jobs, keyed by job id. Entries
// are transient by contract: they exist only for the job's lifetime and are
// never written to durable storage. The orchestrator purges an entry on
// every exit path, so keys cannot leak across jobs.
type JobStore struct {
	mu      sync.Mutex
	entries map[string]jobEntry
}

// NewJobStore creates an empty job credential store.
func NewJobStore() *JobStore {
	return &JobStore{entries: make(map[string]jobEntry)}
}

// Put stores the credentials and options for a job.
func (s *JobStore) Put(jobID string, keys Keys, options *domain.InfographicOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jobID] = jobEntry{keys: keys, options: options}
}

// Get returns the credentials and options stored for a job.
func (s *JobStore) Get(jobID string) (Keys, *domain.InfographicOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	return entry.keys, entry.options, ok
}

// Delete removes a job's entry. Deleting an absent entry is a no-op.
func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jobID)
}

// Len reports how many jobs currently hold credentials.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
